// Package web exposes the translation pipeline over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Semior001/zhbrief/app/revisor"
	"github.com/Semior001/zhbrief/app/store"
	"github.com/Semior001/zhbrief/pkg/logx"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/exp/slog"
)

// Processor runs the extract-translate-summarize pipeline.
type Processor interface {
	Process(ctx context.Context, req revisor.Request) (store.Entry, error)
}

// Ctrl is a controller for the HTTP API.
type Ctrl struct {
	Logger  *slog.Logger
	Service Processor
	Store   store.Interface
}

// Routes returns the configured echo instance.
func (c *Ctrl) Routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(c.requestID)

	e.POST("/translate", c.translate)
	e.GET("/search", c.search)
	e.GET("/history", c.listHistory)
	e.GET("/history/check-url", c.checkURL)
	e.GET("/history/:id", c.getEntry)
	e.DELETE("/history/:id", c.deleteEntry)

	return e
}

// requestID stamps each request with an id for log correlation.
func (c *Ctrl) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ec echo.Context) error {
		id := uuid.New().String()

		ctx := logx.ContextWithRequestID(ec.Request().Context(), id)
		ec.SetRequest(ec.Request().WithContext(ctx))
		ec.Response().Header().Set("X-Request-Id", id)

		return next(ec)
	}
}

type translateRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

func (c *Ctrl) translate(ec echo.Context) error {
	var req translateRequest
	if err := ec.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request, please try again")
	}

	req.Text = strings.TrimSpace(req.Text)
	req.URL = strings.TrimSpace(req.URL)
	if req.Text == "" && req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "please provide text or a URL")
	}

	ctx := ec.Request().Context()

	entry, err := c.Service.Process(ctx, revisor.Request{URL: req.URL, Text: req.Text})
	if err != nil {
		if errors.Is(err, revisor.ErrNoContent) {
			return echo.NewHTTPError(http.StatusBadRequest, "no text content found")
		}
		return fmt.Errorf("process article: %w", err)
	}

	if err := c.Store.Put(ctx, entry); err != nil {
		return fmt.Errorf("save entry: %w", err)
	}

	c.Logger.InfoCtx(ctx, "article processed",
		slog.String("id", entry.ID), slog.String("url", entry.URL))

	return ec.JSON(http.StatusOK, entry)
}

// listItem is a trimmed history entry for listings and search results.
type listItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	PubDate   string    `json:"pub_date"`
	CreatedAt time.Time `json:"created_at"`
}

func toListItem(e store.Entry) listItem {
	return listItem{
		ID:        e.ID,
		URL:       e.URL,
		Title:     e.Title,
		Preview:   preview(e.ChineseText),
		PubDate:   e.PubDate,
		CreatedAt: e.CreatedAt,
	}
}

// preview returns the first 80 characters of the text.
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= 80 {
		return s
	}
	return string(runes[:80])
}

func (c *Ctrl) listHistory(ec echo.Context) error {
	entries, err := c.Store.List(ec.Request().Context(), store.ListRequest{})
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	items := []listItem{}
	for _, e := range entries {
		items = append(items, toListItem(e))
	}
	return ec.JSON(http.StatusOK, items)
}

func (c *Ctrl) search(ec echo.Context) error {
	q := strings.TrimSpace(ec.QueryParam("q"))
	if q == "" {
		return ec.JSON(http.StatusOK, []listItem{})
	}

	entries, err := c.Store.Search(ec.Request().Context(), q)
	if err != nil {
		return fmt.Errorf("search entries: %w", err)
	}

	items := []listItem{}
	for _, e := range entries {
		items = append(items, toListItem(e))
	}
	return ec.JSON(http.StatusOK, items)
}

func (c *Ctrl) checkURL(ec echo.Context) error {
	u := strings.TrimSpace(ec.QueryParam("url"))
	if u == "" {
		return ec.JSON(http.StatusOK, echo.Map{"exists": false})
	}

	entry, err := c.Store.FindByURL(ec.Request().Context(), u)
	if errors.Is(err, store.ErrNotFound) {
		return ec.JSON(http.StatusOK, echo.Map{"exists": false})
	}
	if err != nil {
		return fmt.Errorf("find entry by url: %w", err)
	}

	return ec.JSON(http.StatusOK, echo.Map{
		"exists":     true,
		"id":         entry.ID,
		"title":      entry.Title,
		"created_at": entry.CreatedAt,
	})
}

func (c *Ctrl) getEntry(ec echo.Context) error {
	entry, err := c.Store.Get(ec.Request().Context(), ec.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "entry not found")
	}
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}

	return ec.JSON(http.StatusOK, entry)
}

func (c *Ctrl) deleteEntry(ec echo.Context) error {
	if err := c.Store.Delete(ec.Request().Context(), ec.Param("id")); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return ec.NoContent(http.StatusNoContent)
}
