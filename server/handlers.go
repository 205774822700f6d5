package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"ragd/pkg/extract"
)

// maxUploadBytes caps a single document upload at 10 MiB.
const maxUploadBytes = 10 << 20

func (s *Server) documents(c echo.Context) error {
	docs, err := s.engine.Documents(c.Request().Context(), tenantID(c))
	if err != nil {
		return httpError(err)
	}

	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, map[string]any{
			"id":          d.ID,
			"filename":    d.Filename,
			"uploaded_at": d.UploadedAt.Format("2006-01-02 15:04"),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) deleteDocument(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}
	if err := s.engine.DeleteDocument(c.Request().Context(), tenantID(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) upload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if header.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	file, err := header.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer file.Close()

	text, err := extract.Text(header.Filename, file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	count, err := s.engine.Ingest(c.Request().Context(), text, header.Filename, tenantID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filename":  header.Filename,
		"fragments": count,
	})
}

func (s *Server) query(c echo.Context) error {
	question := c.FormValue("question")
	answer, err := s.engine.Answer(c.Request().Context(), question, tenantID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}
