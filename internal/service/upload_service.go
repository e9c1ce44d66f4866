package service

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"cbt_cms/pkg/logger"
	"cbt_cms/pkg/monitoring"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UploadGateway forwards a file to the exam API upload endpoint.
type UploadGateway interface {
	Upload(ctx context.Context, fileName string, file io.Reader) (any, error)
}

// ExtractUploadURL finds the file URL in an upload response. Accepted shapes,
// in order: a string starting with "http" or "/", {data: string}, {url},
// {file_url}, {location}, {data: {url | file_url | location}}.
func ExtractUploadURL(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		if strings.HasPrefix(v, "http") || strings.HasPrefix(v, "/") {
			return v, nil
		}
		return "", util.ErrUploadURLNotFound
	case map[string]any:
		if s, ok := v["data"].(string); ok {
			return nonEmptyURL(s)
		}
		for _, key := range []string{"url", "file_url", "location"} {
			if s, ok := v[key].(string); ok {
				return nonEmptyURL(s)
			}
		}
		if data, ok := v["data"].(map[string]any); ok {
			for _, key := range []string{"url", "file_url", "location"} {
				if s, ok := data[key].(string); ok {
					return nonEmptyURL(s)
				}
			}
		}
	}
	return "", util.ErrUploadURLNotFound
}

func nonEmptyURL(s string) (string, error) {
	if s == "" {
		return "", util.ErrUploadURLNotFound
	}
	return s, nil
}

// WidgetFile and WidgetResponse are the rich text editor's upload contract.
type WidgetFile struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
	Size int64  `json:"size,omitempty"`
}

type WidgetResponse struct {
	Result       []WidgetFile `json:"result,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
}

type UploadResult struct {
	URL   string          `json:"url"`
	Name  string          `json:"name"`
	Size  int64           `json:"size"`
	Mime  string          `json:"mime"`
	Video *util.VideoInfo `json:"video,omitempty"`
}

// UploadService stores rich text attachments either through the exam API
// ("remote") or in this service's own storage ("storage").
type UploadService struct {
	mode    string
	remote  UploadGateway
	storage *StorageService
	probe   func(path string) (*util.VideoInfo, error)
}

func NewUploadService(mode string, remote UploadGateway, storage *StorageService) *UploadService {
	if mode != util.UploadStorage {
		mode = util.UploadRemote
	}
	return &UploadService{mode: mode, remote: remote, storage: storage, probe: util.GetVideoInfo}
}

func (s *UploadService) Upload(ctx context.Context, fh *multipart.FileHeader) (*UploadResult, error) {
	if fh == nil {
		return nil, util.ErrFileRequired
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mimeType, err := util.ValidateMimeType(f, util.AllowedUploadTypes)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	res := &UploadResult{Name: fh.Filename, Size: fh.Size, Mime: mimeType}
	if s.mode == util.UploadRemote {
		raw, err := s.remote.Upload(ctx, fh.Filename, f)
		if err != nil {
			monitoring.UploadsTotal.WithLabelValues(s.mode, "error").Inc()
			return nil, err
		}
		res.URL, err = ExtractUploadURL(raw)
		if err != nil {
			logger.Log.Warn("upload response without url", zap.Any("response", raw))
			monitoring.UploadsTotal.WithLabelValues(s.mode, "no_url").Inc()
			return nil, err
		}
		monitoring.UploadsTotal.WithLabelValues(s.mode, "ok").Inc()
		return res, nil
	}

	res.URL, res.Video, err = s.store(ctx, fh.Filename, f, fh.Size, mimeType)
	if err != nil {
		monitoring.UploadsTotal.WithLabelValues(s.mode, "error").Inc()
		return nil, err
	}
	monitoring.UploadsTotal.WithLabelValues(s.mode, "ok").Inc()
	return res, nil
}

// store writes the file to storage. Videos are spooled to disk first so they
// can be probed before upload.
func (s *UploadService) store(ctx context.Context, name string, r io.Reader, size int64, mimeType string) (string, *util.VideoInfo, error) {
	object := fmt.Sprintf("questions/%s/%s%s", time.Now().Format("200601"), model.GenerateUUID(), strings.ToLower(filepath.Ext(name)))

	if !util.IsVideo(mimeType) && !util.HasVideoExtension(name) {
		url, err := s.storage.Upload(ctx, object, r, size, mimeType)
		return url, nil, err
	}

	tmp, err := os.CreateTemp("", "cbt-video-*"+filepath.Ext(name))
	if err != nil {
		return "", nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", nil, err
	}
	tmp.Close()

	info, err := s.probe(tmp.Name())
	if err != nil {
		logger.Log.Warn("video probe failed", zap.String("file", name), zap.Error(err))
		info = nil
	}

	url, err := s.storage.UploadFile(ctx, object, tmp.Name(), mimeType)
	return url, info, err
}

// WidgetUpload answers in the editor widget's shape. Failures only affect this
// one upload.
func (s *UploadService) WidgetUpload(ctx context.Context, fh *multipart.FileHeader) WidgetResponse {
	if fh == nil {
		return WidgetResponse{ErrorMessage: "File tidak ditemukan"}
	}
	res, err := s.Upload(ctx, fh)
	if err != nil {
		if errors.Is(err, util.ErrUploadURLNotFound) {
			return WidgetResponse{ErrorMessage: "Upload berhasil tapi URL tidak ditemukan di response API."}
		}
		logger.Log.Error("upload failed", zap.String("file", fh.Filename), zap.Error(err))
		return WidgetResponse{ErrorMessage: err.Error()}
	}
	return WidgetResponse{Result: []WidgetFile{{URL: res.URL, Name: res.Name, Size: res.Size}}}
}
