package objects

import (
	"os"
	"path/filepath"

	"cloud-storage/core/logger"
	"cloud-storage/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for object operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the object routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/objects")
	group.Get("/", h.HandleLookup)
	group.Get("/exists", h.HandleExists)
	group.Get("/content", h.HandleContent)
	group.Get("/csv", h.HandleCSV)
	group.Get("/uploads", h.HandleUploads)
	group.Post("/folders", h.HandleCreateFolder)
	group.Post("/upload", h.HandleUpload)
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch KindOf(err) {
	case ErrArgument:
		return fiber.StatusBadRequest
	case ErrNotFound:
		return fiber.StatusNotFound
	case ErrParse, ErrSerialization:
		return fiber.StatusUnprocessableEntity
	case ErrTransport:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Error(msg, zap.Error(err))
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  string(KindOf(err)),
	})
}

// HandleExists reports whether any object starts with the prefix.
// GET /objects/exists?bucket=&prefix=
func (h *Handler) HandleExists(c *fiber.Ctx) error {
	bucket := c.Query("bucket")
	prefix := c.Query("prefix")

	ok, err := h.service.KeyPathAvailable(c.Context(), bucket, prefix)
	if err != nil {
		return h.fail(c, "Existence check failed", err)
	}
	return c.JSON(fiber.Map{"prefix": prefix, "exists": ok})
}

// HandleLookup resolves a key and reports whether it matched one object or several.
// GET /objects?bucket=&key=
func (h *Handler) HandleLookup(c *fiber.Ctx) error {
	match, err := h.service.FileObject(c.Context(), c.Query("key"), c.Query("bucket"))
	if err != nil {
		return h.fail(c, "Object lookup failed", err)
	}

	kind := "multiple"
	if _, ok := match.(Single); ok {
		kind = "single"
	}
	return c.JSON(fiber.Map{"match": kind, "objects": match.All()})
}

// HandleContent streams the body of a single object.
// GET /objects/content?bucket=&key=
func (h *Handler) HandleContent(c *fiber.Ctx) error {
	ref, err := h.service.single(c.Context(), "objects.HandleContent", c.Query("key"), c.Query("bucket"))
	if err != nil {
		return h.fail(c, "Object lookup failed", err)
	}

	content, err := h.service.ReadObject(c.Context(), ref, false, false)
	if err != nil {
		return h.fail(c, "Object read failed", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	raw, _ := content.(Raw)
	return c.Send([]byte(raw))
}

// HandleCSV parses a CSV object and returns its columns and rows; missing cells are null.
// GET /objects/csv?bucket=&key=
func (h *Handler) HandleCSV(c *fiber.Ctx) error {
	t, err := h.service.ReadCSV(c.Context(), c.Query("key"), c.Query("bucket"))
	if err != nil {
		return h.fail(c, "CSV read failed", err)
	}
	defer t.Release()

	return c.JSON(fiber.Map{
		"columns": t.Columns(),
		"rows":    t.Rows(),
	})
}

type createFolderRequest struct {
	Bucket string `json:"bucket"`
	Folder string `json:"folder"`
}

// HandleCreateFolder creates a folder marker if it does not exist yet.
// Answers 201 when the marker was written and 200 when it already existed.
// POST /objects/folders {"bucket": "...", "folder": "..."}
func (h *Handler) HandleCreateFolder(c *fiber.Ctx) error {
	var req createFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	created, err := h.service.EnsureFolder(c.Context(), req.Folder, req.Bucket)
	if err != nil {
		return h.fail(c, "Create folder failed", err)
	}
	if !created {
		return c.JSON(fiber.Map{"status": "exists", "folder": req.Folder})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "created", "folder": req.Folder})
}

// HandleUpload stores the multipart "file" field at key.
// POST /objects/upload?bucket=&key=
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "multipart field 'file' is required"})
	}
	key := c.Query("key")
	if key == "" {
		key = fh.Filename
	}

	tmpDir, err := os.MkdirTemp("", "upload-*")
	if err != nil {
		return h.fail(c, "Upload staging failed", &Error{Kind: ErrLocal, Op: "objects.HandleUpload", Err: err})
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	local := filepath.Join(tmpDir, filepath.Base(fh.Filename))
	if err := c.SaveFile(fh, local); err != nil {
		return h.fail(c, "Upload staging failed", &Error{Kind: ErrLocal, Op: "objects.HandleUpload", Err: err})
	}

	if err := h.service.UploadFile(c.Context(), local, key, c.Query("bucket"), true); err != nil {
		return h.fail(c, "Upload failed", err)
	}
	l.Info("Stored uploaded file", zap.String("key", key), zap.Int64("size", fh.Size))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "uploaded", "key": key, "size": fh.Size})
}

// HandleUploads lists recent audited uploads for a bucket.
// GET /objects/uploads?bucket=&limit=
func (h *Handler) HandleUploads(c *fiber.Ctx) error {
	bucket, err := h.service.bucketName("objects.HandleUploads", c.Query("bucket"))
	if err != nil {
		return h.fail(c, "Upload listing failed", err)
	}
	if h.service.audit == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "upload audit requires a database"})
	}

	recs, err := h.service.audit.Recent(c.Context(), bucket, utils.ToInt(c.Query("limit")))
	if err != nil {
		return h.fail(c, "Upload listing failed", &Error{Kind: ErrTransport, Op: "objects.HandleUploads", Err: err})
	}
	return c.JSON(fiber.Map{"bucket": bucket, "uploads": recs})
}
