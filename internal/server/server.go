package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gallerykit/internal/events"
	"gallerykit/internal/gallery"
	"gallerykit/internal/models"
	"gallerykit/internal/storage"
)

type Server struct {
	cfg      *models.Config
	router   *gin.Engine
	store    storage.GalleryStore
	notifier *events.Notifier
}

func NewServer(cfg *models.Config, store storage.GalleryStore, notifier *events.Notifier) *Server {
	r := gin.Default()
	r.Static("/files", cfg.Gallery.StoragePath)

	s := &Server{cfg: cfg, router: r, store: store, notifier: notifier}

	r.GET("/gallery/:type/:id", s.handleList)
	r.POST("/gallery/:type/:id/upload", s.handleUpload)
	r.POST("/gallery/:type/:id/delete", s.handleDelete)
	r.POST("/gallery/:type/:id/order", s.handleOrder)
	r.POST("/gallery/:type/:id/data", s.handleChangeData)

	return s
}

func (s *Server) Start() error {
	return s.router.Run(s.cfg.ServerAddr)
}

func (s *Server) Stop() {
	// No shutdown needed for gin
}

// staticOwner adapts the route parameters to the engine's owner contract.
type staticOwner struct {
	typ string
	key string
}

func (o staticOwner) GalleryType() string     { return o.typ }
func (o staticOwner) GalleryKey() interface{} { return o.key }

func (s *Server) engine(c *gin.Context) *gallery.Engine {
	owner := staticOwner{typ: c.Param("type"), key: c.Param("id")}
	return gallery.NewEngine(s.cfg.Gallery, s.store, owner, nil)
}

// imageResponse is the record shape the gallery widget consumes.
type imageResponse struct {
	ID          int64  `json:"id"`
	Rank        int64  `json:"rank"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PreviewURL  string `json:"previewUrl"`
}

func toResponse(eng *gallery.Engine, img models.Image) imageResponse {
	return imageResponse{
		ID:          img.ID,
		Rank:        img.Rank,
		Name:        img.Name,
		Description: img.Description,
		PreviewURL:  eng.ImageURL(&img, gallery.VersionPreview),
	}
}

func (s *Server) handleList(c *gin.Context) {
	const op = "server.handleList"

	eng := s.engine(c)
	images, err := eng.Images(c.Request.Context(), storage.SortAsc)
	if err != nil {
		status(c, op, err)
		return
	}

	resp := make([]imageResponse, 0, len(images))
	for _, img := range images {
		resp = append(resp, toResponse(eng, img))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleUpload(c *gin.Context) {
	const op = "server.handleUpload"

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("%s: %v", op, err)})
		return
	}
	defer os.Remove(tmpPath)

	eng := s.engine(c)
	img, err := eng.AddImage(c.Request.Context(), tmpPath, models.ImageFields{})
	if err != nil {
		status(c, op, err)
		return
	}

	s.publish(c, "added", []int64{img.ID})

	c.JSON(http.StatusOK, toResponse(eng, *img))
}

func (s *Server) handleDelete(c *gin.Context) {
	const op = "server.handleDelete"

	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eng := s.engine(c)
	if err := eng.DeleteAllImages(c.Request.Context(), req.IDs); err != nil {
		status(c, op, err)
		return
	}

	s.publish(c, "deleted", req.IDs)

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

func (s *Server) handleOrder(c *gin.Context) {
	const op = "server.handleOrder"

	var order []gallery.ArrangeEntry
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eng := s.engine(c)
	normalized, err := eng.Arrange(c.Request.Context(), order, storage.SortAsc)
	if err != nil {
		status(c, op, err)
		return
	}

	ids := make([]int64, len(normalized))
	for i, entry := range normalized {
		ids[i] = entry.ID
	}
	s.publish(c, "reordered", ids)

	c.JSON(http.StatusOK, normalized)
}

func (s *Server) handleChangeData(c *gin.Context) {
	const op = "server.handleChangeData"

	var req map[string]models.ImageFields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data := make(map[int64]models.ImageFields, len(req))
	for idStr, fields := range req {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: bad image id %q", op, idStr)})
			return
		}
		data[id] = fields
	}

	eng := s.engine(c)
	updated, err := eng.UpdateImagesData(c.Request.Context(), data)
	if err != nil {
		status(c, op, err)
		return
	}

	ids := make([]int64, len(updated))
	resp := make([]imageResponse, 0, len(updated))
	for i, img := range updated {
		ids[i] = img.ID
		resp = append(resp, toResponse(eng, img))
	}
	s.publish(c, "updated", ids)

	c.JSON(http.StatusOK, resp)
}

func (s *Server) publish(c *gin.Context, action string, ids []int64) {
	err := s.notifier.Publish(c.Request.Context(), events.Event{
		Action:    action,
		OwnerType: c.Param("type"),
		OwnerID:   c.Param("id"),
		ImageIDs:  ids,
	})
	if err != nil {
		logrus.WithField("error", err).Warn("gallery event not published")
	}
}

// status maps engine errors onto HTTP codes: bad input and structural
// errors are the client's problem, everything else is ours.
func status(c *gin.Context, op string, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, gallery.ErrNoData):
		code = http.StatusBadRequest
	case errors.Is(err, gallery.ErrUnsupportedKey), errors.Is(err, gallery.ErrUnsupportedVersion):
		code = http.StatusBadRequest
	}
	c.JSON(code, gin.H{"error": fmt.Sprintf("%s: %v", op, err)})
}
