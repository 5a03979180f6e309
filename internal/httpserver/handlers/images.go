package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/startpage/internal/domain"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
	"github.com/MrSnakeDoc/startpage/internal/media"
	"github.com/MrSnakeDoc/startpage/internal/storage"
	"github.com/MrSnakeDoc/startpage/internal/utils"
)

const (
	MaxIconUpload       = 10 << 20
	MaxBackgroundUpload = 50 << 20

	iconField       = "icon"
	backgroundField = "image"
)

type backgroundImageView struct {
	domain.BackgroundImage
	URL string `json:"url"`
}

func newBackgroundImageView(img domain.BackgroundImage) backgroundImageView {
	return backgroundImageView{
		BackgroundImage: img,
		URL:             path.Join("/images", storage.BackgroundsDir, img.Filename),
	}
}

type backgroundListResponse struct {
	Images []backgroundImageView `json:"images"`
}

type uploadBackgroundResponse struct {
	Image   backgroundImageView `json:"image"`
	Version string              `json:"version"`
}

// readUpload returns the first file part named field. The body is capped at
// limit bytes; anything beyond is a bad request.
func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, fmt.Errorf("missing %q file: %w", field, domain.ErrBadRequest)
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
		}
		if part.FormName() != field {
			utils.Close(part)
			continue
		}
		data, err := readPart(part)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
		}
		return part.FileName(), data, nil
	}
}

func readPart(part *multipart.Part) ([]byte, error) {
	defer utils.Close(part)
	return io.ReadAll(part)
}

// SetIcon stores an uploaded icon for the bookmark in the URL. Any image
// format we recognize is accepted.
func SetIcon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d.Logger, fmt.Errorf("bookmark id: %w", domain.ErrBadRequest))
			return
		}

		filename, data, err := readUpload(w, r, iconField, MaxIconUpload)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		format, err := media.DetectFormat(filename, data)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		version, err := d.Storage.SetBookmarkIcon(id, storage.Asset{Data: data, Ext: format.Ext})
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newVersionResponse(version))
	}
}

func ListBackgroundImages(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		images, err := d.Storage.BackgroundImages(r.URL.Query().Get("profile"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		views := make([]backgroundImageView, 0, len(images))
		for _, img := range images {
			views = append(views, newBackgroundImageView(img))
		}
		writeJSON(w, http.StatusOK, backgroundListResponse{Images: views})
	}
}

// UploadBackgroundImage accepts raster images only; the orientation is read
// from the image header.
func UploadBackgroundImage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := r.URL.Query().Get("profile")

		filename, data, err := readUpload(w, r, backgroundField, MaxBackgroundUpload)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		format, err := media.DetectFormat(filename, data)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		orientation, err := media.Orientation(data)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		img, version, err := d.Storage.AddBackgroundImage(profile, storage.Asset{
			Data:        data,
			Ext:         format.Ext,
			Orientation: orientation,
		})
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, uploadBackgroundResponse{
			Image:   newBackgroundImageView(img),
			Version: version,
		})
	}
}

func DeleteBackgroundImage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id, err := uuid.Parse(q.Get("id"))
		if err != nil {
			writeError(w, r, d.Logger, fmt.Errorf("image id: %w", domain.ErrBadRequest))
			return
		}
		version, err := d.Storage.DeleteBackgroundImage(q.Get("profile"), id)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newVersionResponse(version))
	}
}
