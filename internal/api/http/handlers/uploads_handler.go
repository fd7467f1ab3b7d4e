package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/JulianoPassing/scc-tickets/internal/api/dto"
	"github.com/JulianoPassing/scc-tickets/internal/uploads"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

// UploadsHandler forwards image uploads to the external host.
type UploadsHandler struct {
	imgur *uploads.ImgurClient
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(imgur *uploads.ImgurClient) *UploadsHandler {
	return &UploadsHandler{imgur: imgur}
}

// Upload POST /uploads accepts a multipart file and returns its hosted URL.
func (h *UploadsHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("no file sent", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("could not read the file", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewValidationError("could not read the file", nil)
	}
	mimeType := header.Header.Get("Content-Type")

	url, err := h.imgur.Upload(c.Context(), data, header.Filename, mimeType)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{
		URL:      url,
		Filename: header.Filename,
		MimeType: mimeType,
		Size:     int64(len(data)),
	}})
}
