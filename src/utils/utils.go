package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Sagarsingh9528/Ping/src/core/database"
	storage_go "github.com/supabase-community/storage-go"
)

const (
	maxImageSize = 5 * 1024 * 1024
	maxVideoSize = 50 * 1024 * 1024
)

// ValidateImageUpload re-checks size and content type server side; the
// client-side limits are advisory only.
func ValidateImageUpload(file *multipart.FileHeader) error {
	if file.Size > maxImageSize {
		return fmt.Errorf("image exceeds the 5MB limit")
	}
	contentType, err := detectContentType(file)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("unsupported image type %s", contentType)
	}
	return nil
}

// ValidateStoryUpload accepts images up to 5MB and videos up to 50MB, and
// returns the media type.
func ValidateStoryUpload(file *multipart.FileHeader) (string, error) {
	contentType, err := detectContentType(file)
	if err != nil {
		return "", err
	}
	switch {
	case strings.HasPrefix(contentType, "image/"):
		if file.Size > maxImageSize {
			return "", fmt.Errorf("image exceeds the 5MB limit")
		}
		return "image", nil
	case strings.HasPrefix(contentType, "video/"):
		if file.Size > maxVideoSize {
			return "", fmt.Errorf("video exceeds the 50MB limit")
		}
		return "video", nil
	default:
		return "", fmt.Errorf("unsupported media type %s", contentType)
	}
}

func detectContentType(file *multipart.FileHeader) (string, error) {
	fileBody, err := file.Open()
	if err != nil {
		return "", err
	}
	defer fileBody.Close()

	head := make([]byte, 512)
	n, err := fileBody.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

// UploadToSupabaseStorage uploads a file to Supabase storage and returns the file's path, public URL, and content type.
func UploadToSupabaseStorage(file *multipart.FileHeader, path string) (string, string, string, error) {
	// Initialize Supabase storage client
	storageClient, bucketName, err := database.SupabaseStorage()
	if err != nil {
		return "", "", "", err
	}

	// Open the file for reading
	fileBody, err := file.Open()
	if err != nil {
		return "", "", "", err
	}
	defer fileBody.Close()

	// Read the file contents
	fileBytes, err := io.ReadAll(fileBody)
	if err != nil {
		return "", "", "", err
	}

	// Reset the file pointer to the beginning
	_, err = fileBody.Seek(0, io.SeekStart)
	if err != nil {
		return "", "", "", err
	}

	// Detect content type based on file contents
	contentType := http.DetectContentType(fileBytes)

	// Upload the file to Supabase storage
	_, err = storageClient.UploadFile(bucketName, path, fileBody, storage_go.FileOptions{ContentType: &contentType})
	if err != nil {
		return "", "", "", err
	}

	// Get the public URL for the uploaded file
	response := storageClient.GetPublicUrl(bucketName, path)
	fileUrl := response.SignedURL

	return path, fileUrl, contentType, nil
}

// DeleteFromSupabaseStorage deletes a file from Supabase storage given the file path.
func DeleteFromSupabaseStorage(path string) error {
	// Initialize Supabase storage client
	storageClient, bucketName, err := database.SupabaseStorage()
	if err != nil {
		return err
	}

	// Delete the file from Supabase storage
	_, err = storageClient.RemoveFile(bucketName, []string{path})
	if err != nil {
		return err
	}

	return nil
}
