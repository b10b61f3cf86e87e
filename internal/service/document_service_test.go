package service_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/config"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
	"docanalyzer/internal/service"
	"docanalyzer/mocks"
)

type documentMocks struct {
	docRepo   *mocks.MockDocumentRepo
	orderRepo *mocks.MockOrderRepo
	auditRepo *mocks.MockOrderAuditRepo
	storage   *mocks.MockObjectStorage
}

func newDocumentService() (service.DocumentService, documentMocks) {
	m := documentMocks{
		docRepo:   new(mocks.MockDocumentRepo),
		orderRepo: new(mocks.MockOrderRepo),
		auditRepo: new(mocks.MockOrderAuditRepo),
		storage:   new(mocks.MockObjectStorage),
	}
	m.auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	cfg := &config.S3Config{Bucket: "test-bucket", MaxFileSizeMB: 1, PresignExpiry: 900}
	return service.NewDocumentService(m.docRepo, m.orderRepo, m.auditRepo, m.storage, cfg), m
}

// fileHeaders builds multipart file headers the way gin hands them to handlers.
func fileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	return form.File["files"]
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestDocumentService_Upload_PaidOrderMovesToUploaded(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := paidOrder(caller.UserID, domain.OrderStatusPaid)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	m.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket" && in.ContentType == "application/pdf"
	})).Return(&port.UploadOutput{Location: "s3://test-bucket/x"}, nil)
	m.docRepo.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusUploaded).Return(nil)
	m.orderRepo.On("UpdateStatus", mock.Anything, order.ID, domain.OrderStatusUploaded).Return(nil)

	docs, err := svc.Upload(context.Background(), caller, order.ID, fileHeaders(t, map[string][]byte{"contract.pdf": pdfBytes}))

	require.NoError(t, err)
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, "contract.pdf", doc.OriginalName)
	assert.Equal(t, domain.FileTypePDF, doc.FileType)
	assert.Equal(t, domain.FileStatusUploaded, doc.Status)
	assert.Len(t, doc.ContentHash, 64)
	assert.Contains(t, doc.S3Key, "users/"+caller.UserID.String()+"/orders/"+order.ID.String()+"/")
	m.orderRepo.AssertExpectations(t)
	m.storage.AssertExpectations(t)
}

func TestDocumentService_Upload_PendingOrderStaysPending(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := testOrder(caller.UserID)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.docRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	m.docRepo.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusUploaded).Return(nil)

	docs, err := svc.Upload(context.Background(), caller, order.ID, fileHeaders(t, map[string][]byte{
		"notes.txt": []byte("Meeting notes: the supplier agreed to revised terms."),
	}))

	require.NoError(t, err)
	assert.Len(t, docs, 1)
	m.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_RejectsMismatchedContent(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := testOrder(caller.UserID)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Upload(context.Background(), caller, order.ID, fileHeaders(t, map[string][]byte{
		"fake.pdf": []byte("just some plain text pretending to be a pdf"),
	}))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	m.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_RejectsUnknownExtension(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := testOrder(caller.UserID)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Upload(context.Background(), caller, order.ID, fileHeaders(t, map[string][]byte{
		"run.exe": []byte("MZ"),
	}))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestDocumentService_Upload_TooLarge(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := testOrder(caller.UserID)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	big := bytes.Repeat([]byte("a"), 1024*1024+1)
	_, err := svc.Upload(context.Background(), caller, order.ID, fileHeaders(t, map[string][]byte{"big.txt": big}))

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestDocumentService_Upload_AllUploadsFail(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := paidOrder(caller.UserID, domain.OrderStatusPaid)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.docRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 unavailable"))
	m.docRepo.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusFailed).Return(nil)

	docs, err := svc.Upload(context.Background(), caller, order.ID, fileHeaders(t, map[string][]byte{"contract.pdf": pdfBytes}))

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	require.Len(t, docs, 1)
	assert.Equal(t, domain.FileStatusFailed, docs[0].Status)
	m.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_ProcessingOrder(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := paidOrder(caller.UserID, domain.OrderStatusProcessing)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Upload(context.Background(), caller, order.ID, fileHeaders(t, map[string][]byte{"a.txt": []byte("hello")}))
	assert.ErrorIs(t, err, domain.ErrOrderNotEditable)
}

func TestDocumentService_Upload_NoFiles(t *testing.T) {
	svc, _ := newDocumentService()

	_, err := svc.Upload(context.Background(), testCaller(), uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrNoFiles)
}

func TestDocumentService_Get_PresignsUploadedFile(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := paidOrder(caller.UserID, domain.OrderStatusUploaded)
	doc := &domain.Document{ID: uuid.New(), OrderID: order.ID, S3Bucket: "test-bucket", S3Key: "k", Status: domain.FileStatusUploaded}

	m.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.storage.On("GetPresignedURL", mock.Anything, "test-bucket", "k", int64(900)).Return("https://signed", nil)

	result, err := svc.Get(context.Background(), caller, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed", result.DownloadURL)
}

func TestDocumentService_Delete_LastDocumentReturnsOrderToPaid(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := paidOrder(caller.UserID, domain.OrderStatusUploaded)
	doc := &domain.Document{ID: uuid.New(), OrderID: order.ID, S3Bucket: "test-bucket", S3Key: "k"}

	m.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.storage.On("Delete", mock.Anything, "test-bucket", "k").Return(nil)
	m.docRepo.On("Delete", mock.Anything, doc.ID).Return(nil)
	m.docRepo.On("CountUploaded", mock.Anything, order.ID).Return(0, nil)
	m.orderRepo.On("UpdateStatus", mock.Anything, order.ID, domain.OrderStatusPaid).Return(nil)

	err := svc.Delete(context.Background(), caller, doc.ID)
	require.NoError(t, err)
	m.orderRepo.AssertExpectations(t)
	m.docRepo.AssertExpectations(t)
}

func TestDocumentService_Delete_CompletedOrder(t *testing.T) {
	svc, m := newDocumentService()
	caller := testCaller()
	order := paidOrder(caller.UserID, domain.OrderStatusCompleted)
	doc := &domain.Document{ID: uuid.New(), OrderID: order.ID}

	m.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	err := svc.Delete(context.Background(), caller, doc.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotEditable)
	m.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
