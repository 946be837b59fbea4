package google

import (
	"context"
	"fmt"
	"io"
)

// Drive MIME types relevant to material extraction.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypePDF          = "application/pdf"

	exportMimeText = "text/plain"
)

// MaxFileSize caps downloaded and exported content (10MB).
const MaxFileSize = 10 * 1024 * 1024

// DriveFile is the metadata needed to store and extract a material.
type DriveFile struct {
	ID          string
	Name        string
	MimeType    string
	WebViewLink string
}

// ResolveFile fetches a Drive file's metadata.
func (s *Service) ResolveFile(ctx context.Context, creds Credentials, fileID string) (*DriveFile, error) {
	srv, err := s.Drive(ctx, creds.AccessToken, creds.RefreshToken, creds.Expiry, creds.OnRefresh)
	if err != nil {
		return nil, err
	}

	if err := s.WaitDrive(ctx); err != nil {
		return nil, err
	}
	file, err := srv.Files.Get(fileID).Fields("id", "name", "mimeType", "webViewLink").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get file %s: %w", fileID, err)
	}

	return &DriveFile{
		ID:          file.Id,
		Name:        file.Name,
		MimeType:    file.MimeType,
		WebViewLink: file.WebViewLink,
	}, nil
}

// ExportPlainText exports a Google Workspace file (Doc, Slides) as text.
func (s *Service) ExportPlainText(ctx context.Context, creds Credentials, fileID string) (string, error) {
	srv, err := s.Drive(ctx, creds.AccessToken, creds.RefreshToken, creds.Expiry, creds.OnRefresh)
	if err != nil {
		return "", err
	}

	if err := s.WaitDrive(ctx); err != nil {
		return "", err
	}
	resp, err := srv.Files.Export(fileID, exportMimeText).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("unable to export file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize))
	if err != nil {
		return "", fmt.Errorf("unable to read export of file %s: %w", fileID, err)
	}
	return string(data), nil
}

// Download fetches a file's raw bytes (used for PDFs).
func (s *Service) Download(ctx context.Context, creds Credentials, fileID string) ([]byte, error) {
	srv, err := s.Drive(ctx, creds.AccessToken, creds.RefreshToken, creds.Expiry, creds.OnRefresh)
	if err != nil {
		return nil, err
	}

	if err := s.WaitDrive(ctx); err != nil {
		return nil, err
	}
	resp, err := srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("unable to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("unable to read file %s: %w", fileID, err)
	}
	return data, nil
}
