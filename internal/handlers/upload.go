package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/orderdesk/internal/config"
)

const maxUploadBytes = 10 * 1024 * 1024

// UploadHandler stores product images on local disk and serves them back.
type UploadHandler struct {
	cfg *config.Config
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(cfg *config.Config) *UploadHandler {
	return &UploadHandler{cfg: cfg}
}

// Create accepts a multipart image upload. Content type and size are checked
// before anything is written to disk.
func (h *UploadHandler) Create(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no image provided")
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fiber.NewError(fiber.StatusBadRequest, "file must be an image")
	}

	if file.Size > maxUploadBytes {
		return fiber.NewError(fiber.StatusBadRequest, "image must be smaller than 10MB")
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		log.Printf("[Upload] failed to create upload dir: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store image")
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store image")
	}

	filename := fmt.Sprintf("%d_%s%s",
		time.Now().Unix(),
		hex.EncodeToString(suffix),
		filepath.Ext(file.Filename),
	)

	if err := c.SaveFile(file, filepath.Join(h.cfg.UploadDir, filename)); err != nil {
		log.Printf("[Upload] save failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store image")
	}

	base := h.cfg.PublicURL
	if base == "" {
		base = c.Protocol() + "://" + c.Hostname()
	}

	return c.JSON(fiber.Map{
		"success": true,
		"url":     base + "/uploads/" + filename,
	})
}

// Show streams a previously uploaded file.
func (h *UploadHandler) Show(c *fiber.Ctx) error {
	filename := filepath.Base(c.Params("filename"))
	path := filepath.Join(h.cfg.UploadDir, filename)

	if _, err := os.Stat(path); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "file not found")
	}

	return c.SendFile(path)
}
