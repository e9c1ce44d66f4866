package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	UploadRemote  = "remote"
	UploadStorage = "storage"
)

// 文件上传相关常量
const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedUploadTypes     = []string{MimeImage, MimeVideo}
	AllowedImportTypes     = []string{"text/plain", "text/csv", "application/vnd.ms-excel", "application/zip", MimeOctetStream}
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}
)

// Notification kinds carried in data.notifications.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyInfo    = "info"
	NotifyWarning = "warning"
)

// Response headers of the PDF download.
const (
	HeaderContentDisposition = "Content-Disposition"
	HeaderPdfPages           = "X-Pdf-Pages"
	HeaderArchiveURL         = "X-Archive-Url"
)

// DownloadHeaders are exposed to cross-origin callers.
var DownloadHeaders = []string{HeaderContentDisposition, HeaderPdfPages, HeaderArchiveURL}
