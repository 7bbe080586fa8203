// Package client exposes the document-sharing operations of the remote
// portal: filtered listing, retrieval, creation, deletion and download URL
// construction, plus the connectivity probe and user endpoints.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edushare-client/internal/models"
	"github.com/noah-isme/edushare-client/internal/transport"
	appErrors "github.com/noah-isme/edushare-client/pkg/errors"
)

// DocumentClient provides CRUD and filtered listing over the document
// resource. All operations except DownloadURL require an active session.
type DocumentClient struct {
	api       *transport.Client
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentClient constructs a DocumentClient.
func NewDocumentClient(api *transport.Client, validate *validator.Validate, logger *zap.Logger) *DocumentClient {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentClient{api: api, validator: validate, logger: logger}
}

type documentListResponse struct {
	Data []models.Document `json:"data"`
}

// List fetches documents matching the filter. Only non-empty filter fields
// are sent; the server combines present fields with AND. Result ordering is
// server-defined; use SortByNewest for recency order.
func (c *DocumentClient) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.Subject != "" {
		query.Set("subject", filter.Subject)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	var resp documentListResponse
	if err := c.api.Get(ctx, "/documents", query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Get fetches a single document by id.
func (c *DocumentClient) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := c.api.Get(ctx, "/documents/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create submits a new document as a multipart request carrying the metadata
// fields and exactly one file. Required metadata is validated before any
// network I/O.
func (c *DocumentClient) Create(ctx context.Context, meta models.UploadMetadata, file models.FileSelection) (*models.Document, error) {
	if err := c.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title, type and subject are required")
	}
	if file.Name == "" || len(file.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a file is required")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"title":       meta.Title,
		"type":        meta.Type,
		"subject":     meta.Subject,
		"description": meta.Description,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode form field")
		}
	}
	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode file part")
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode file part")
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize form")
	}

	var doc models.Document
	if err := c.api.Post(ctx, "/documents", body, writer.FormDataContentType(), &doc); err != nil {
		return nil, err
	}

	c.logger.Info("document created",
		zap.String("document_id", doc.ID),
		zap.String("title", doc.Title),
	)
	return &doc, nil
}

// Remove deletes a document. The server is the authority on permissions; a
// FORBIDDEN response is always possible even when CanDelete said yes.
func (c *DocumentClient) Remove(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/documents/"+url.PathEscape(id), nil)
}

// DownloadURL constructs the download address for a document, embedding the
// current session token as a query credential. No network call is made.
//
// The token is captured by value at call time: a URL built before logout
// keeps working until the server invalidates that token. This is a known
// exposure of the wire contract, not something the client papers over.
func (c *DocumentClient) DownloadURL(id string) string {
	base := fmt.Sprintf("%s/documents/download/%s", c.api.APIBase(), url.PathEscape(id))
	token := c.api.CurrentToken()
	if token == "" {
		return base
	}
	return base + "?token=" + url.QueryEscape(token)
}

// Download fetches the document's file bytes through the query-token route.
// The caller owns closing the reader.
func (c *DocumentClient) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	token := c.api.CurrentToken()
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingToken, "")
	}
	query := url.Values{"token": {token}}
	return c.api.Raw(ctx, "/documents/download/"+url.PathEscape(id), query)
}

// SortByNewest orders documents by creation time, most recent first. The
// server makes no ordering promise, so recency views sort explicitly.
func SortByNewest(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
}
