package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// uploadDir resolves the storage root for uploaded quotation files.
func uploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "uploads"
}

// SaveUploadedFile stores a multipart file under the upload root with a
// unique name and returns that name. Used by the quotation upload flow.
func SaveUploadedFile(file multipart.File, originalName string) (string, error) {
	filename := filepath.Base(originalName)
	if filename == "" || filename == "." {
		return "", fmt.Errorf("invalid file name")
	}

	dir := uploadDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("unable to create directory %s: %w", dir, err)
	}

	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String(), filename)
	dstPath := filepath.Join(dir, uniqueName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("unable to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("unable to save file: %w", err)
	}
	return uniqueName, nil
}

// ServeFile godoc
// @Summary      Serve an uploaded file
// @Description  Serve a stored file by name from query param ?file=filename
// @Tags         upload
// @Produce      application/octet-stream
// @Param        file  query     string  true  "File name"
// @Success      200   {file}    file    "File content"
// @Failure      400   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/get-file [get]
func ServeFile(c *gin.Context) {
	fileName := c.Query("file")
	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file parameter is required"})
		return
	}

	// keep requests inside the upload root
	cleanFileName := filepath.Clean(fileName)
	if cleanFileName != fileName || strings.Contains(cleanFileName, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file path"})
		return
	}

	absoluteDir, err := filepath.Abs(uploadDir())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	filePath := filepath.Join(absoluteDir, cleanFileName)
	if !strings.HasPrefix(filePath, absoluteDir+string(os.PathSeparator)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) || (err == nil && info.IsDir()) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	file, err := os.Open(filePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.Writer.Header().Set("Content-Type", http.DetectContentType(buffer[:n]))

	c.File(filePath)
}

// UploadFile godoc
// @Summary      Upload a file
// @Description  Upload a file (multipart form, field name: file)
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      200   {object}  utils.Response
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/upload [post]
func UploadFile(c *gin.Context) {
	file, handler, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving the file"})
		return
	}
	defer file.Close()

	uniqueName, err := SaveUploadedFile(file, handler.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "File uploaded successfully",
		"file_name": uniqueName,
		"file_size": handler.Size,
		"file_type": handler.Header.Get("Content-Type"),
	})
}
