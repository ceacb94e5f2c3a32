package media

import (
	"bytes"
	"io"
	"mime/multipart"
)

// UploadStatus mirrors how a single form file arrived. The zero value means no file.
type UploadStatus int

const (
	UploadNoFile UploadStatus = iota
	UploadOK
	UploadPartial
	UploadFailed
)

func (s UploadStatus) String() string {
	switch s {
	case UploadOK:
		return "ok"
	case UploadNoFile:
		return "no file"
	case UploadPartial:
		return "partial upload"
	default:
		return "upload failed"
	}
}

// Upload is one submitted file before validation. Open may be called more than once.
type Upload struct {
	Field        string
	Filename     string
	DeclaredType string
	Size         int64
	Status       UploadStatus
	Open         func() (io.ReadCloser, error)
}

// Present reports whether the client actually attached a file. A zero Upload is absent.
func (u Upload) Present() bool {
	return u.Status != UploadNoFile && u.Open != nil
}

// UploadFromFileHeader adapts a parsed multipart file. A nil header yields UploadNoFile.
func UploadFromFileHeader(field string, fh *multipart.FileHeader) Upload {
	if fh == nil || fh.Filename == "" {
		return Upload{Field: field, Status: UploadNoFile}
	}
	u := Upload{
		Field:        field,
		Filename:     fh.Filename,
		DeclaredType: fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Status:       UploadOK,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
	if fh.Size == 0 {
		// browsers send an empty part when the transfer was cut short
		u.Status = UploadPartial
	}
	return u
}

// UploadFromBytes builds an in-memory upload, mostly for tests and CLI imports.
func UploadFromBytes(field, filename, declaredType string, data []byte) Upload {
	return Upload{
		Field:        field,
		Filename:     filename,
		DeclaredType: declaredType,
		Size:         int64(len(data)),
		Status:       UploadOK,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
