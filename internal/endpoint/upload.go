package endpoint

// FileUpload is one file sent as a multipart part. Only meaningful when the
// endpoint uses MultipartFormData.
type FileUpload struct {
	// Data is the raw file content.
	Data []byte
	// FileName includes the extension, e.g. avatar.png.
	FileName string
	// MIMEType is optional; empty lets the encoder pick a default.
	MIMEType string
}
