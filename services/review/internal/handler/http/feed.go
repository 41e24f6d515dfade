package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/Shiro-Bankai7/electricians/pkg/logger"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/domain"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/service"
)

// FeedConfig describes the public RSS feed of reviews.
type FeedConfig struct {
	Title       string
	SiteURL     string
	AuthorName  string
	AuthorEmail string
	Size        int
	CacheMaxAge time.Duration
}

// FeedHandler serves the latest reviews as RSS 2.0.
type FeedHandler struct {
	service *service.ReviewService
	cfg     FeedConfig
	logger  *slog.Logger
}

// NewFeedHandler creates a new RSS feed handler.
func NewFeedHandler(svc *service.ReviewService, cfg FeedConfig, logger *slog.Logger) *FeedHandler {
	if cfg.Size <= 0 {
		cfg.Size = 20
	}
	return &FeedHandler{service: svc, cfg: cfg, logger: logger}
}

func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.WithContext(ctx, h.logger)

	reviews, err := h.service.Latest(ctx, h.cfg.Size)
	if err != nil {
		l.ErrorContext(ctx, "unable to fetch reviews for feed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	site := strings.TrimRight(h.cfg.SiteURL, "/")
	feed := &feeds.Feed{
		Title:       h.cfg.Title,
		Link:        &feeds.Link{Href: site},
		Description: "Latest customer reviews",
		Author:      &feeds.Author{Name: h.cfg.AuthorName, Email: h.cfg.AuthorEmail},
		Created:     time.Now().UTC(),
	}
	if len(reviews) > 0 {
		feed.Updated = reviews[0].CreatedAt
	}

	for _, rv := range reviews {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          rv.ID,
			IsPermaLink: "false",
			Title:       feedItemTitle(rv),
			Link:        &feeds.Link{Href: site + "/#review-" + rv.ID},
			Description: rv.Text,
			Author:      &feeds.Author{Name: rv.Name},
			Created:     rv.CreatedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		l.ErrorContext(ctx, "unable to format feed as RSS", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		l.ErrorContext(ctx, "unable to write feed to response", slog.String("error", err.Error()))
	}
}

func feedItemTitle(r domain.Review) string {
	return fmt.Sprintf("%s rated us %d/%d", r.Name, r.Rating, domain.MaxRating)
}
