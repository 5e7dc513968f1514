package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveClient uploads exported notes to Google Drive.
type DriveClient struct {
	service    *drive.Service
	folderName string
	folderID   string
}

// NewDriveClient creates a Google Drive client from a credentials file
// and a previously obtained OAuth token file. A server has no interactive
// consent flow, so a missing or invalid token file is an error.
func NewDriveClient(credentialsFile, tokenFile, folderName string) (*DriveClient, error) {
	ctx := context.Background()

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	client, err := clientFromTokenFile(config, tokenFile)
	if err != nil {
		return nil, err
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	dc := &DriveClient{
		service:    srv,
		folderName: folderName,
	}
	if err := dc.ensureFolder(); err != nil {
		return nil, err
	}
	return dc, nil
}

func clientFromTokenFile(config *oauth2.Config, tokenFile string) (*http.Client, error) {
	f, err := os.Open(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return config.Client(context.Background(), tok), nil
}

// ensureFolder finds or creates the root export folder.
func (dc *DriveClient) ensureFolder() error {
	query := fmt.Sprintf("name='%s' and mimeType='application/vnd.google-apps.folder' and trashed=false",
		dc.folderName)

	r, err := dc.service.Files.List().Q(query).Spaces("drive").Fields("files(id, name)").Do()
	if err != nil {
		return fmt.Errorf("search for folder: %w", err)
	}
	if len(r.Files) > 0 {
		dc.folderID = r.Files[0].Id
		return nil
	}

	folder := &drive.File{
		Name:     dc.folderName,
		MimeType: "application/vnd.google-apps.folder",
	}
	file, err := dc.service.Files.Create(folder).Fields("id").Do()
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	dc.folderID = file.Id
	return nil
}

// UploadText uploads a text document into the export folder and returns
// a shareable link.
func (dc *DriveClient) UploadText(name, text string) (string, error) {
	file := &drive.File{
		Name:    fmt.Sprintf("%s_%s.txt", time.Now().Format("20060102_150405"), name),
		Parents: []string{dc.folderID},
	}

	created, err := dc.service.Files.Create(file).
		Media(strings.NewReader(text)).
		Fields("id").
		Do()
	if err != nil {
		return "", fmt.Errorf("upload to drive: %w", err)
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id), nil
}
