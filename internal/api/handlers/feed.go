package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/enso-app/enso/internal/dataset"
	"github.com/enso-app/enso/internal/feed"
	middlewares "github.com/enso-app/enso/internal/middleware"
	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/store"
	"github.com/enso-app/enso/internal/utils"
)

// FeedHandler drives feed sessions over the assembled working set.
type FeedHandler struct {
	manager  *feed.Manager
	provider *dataset.Provider
	store    *store.Store
	repeat   int
}

func NewFeedHandler(manager *feed.Manager, provider *dataset.Provider, st *store.Store, repeat int) *FeedHandler {
	return &FeedHandler{
		manager:  manager,
		provider: provider,
		store:    st,
		repeat:   repeat,
	}
}

// customRecords loads and merges the caller's custom items.
func (h *FeedHandler) customRecords(userID string) []models.RawRecord {
	var custom []models.RawRecord
	if userID != "" && h.store != nil {
		customItems, err := h.store.GetCustomItems(userID)
		if err != nil {
			log.Printf("failed to load custom items for %s: %v", userID, err)
		} else {
			for _, item := range customItems {
				custom = append(custom, item.RawRecord())
			}
		}
	}
	return feed.MergeCustom(custom)
}

// buildWorkingSet assembles the caller's dataset: their merged custom items
// first, then the bulk dataset, with the composite identity marker the
// session compares on later snapshots.
func (h *FeedHandler) buildWorkingSet(userID string, repeat int) ([]models.Item, string) {
	custom := h.customRecords(userID)
	items := feed.Assemble(custom, h.provider.Records(), repeat, nil)
	return items, h.datasetKey(custom)
}

// datasetKey extends the bulk identity with the custom-item fingerprint so a
// changed custom list also reads as a new dataset.
func (h *FeedHandler) datasetKey(custom []models.RawRecord) string {
	identity := h.provider.Identity()
	if len(custom) == 0 {
		return identity
	}
	parts := make([]string, 0, len(custom))
	for _, rec := range custom {
		parts = append(parts, rec.ID, rec.SourceURL, rec.ImageURL)
	}
	return identity + ":custom:" + utils.ShortHash(parts...)
}

// CreateSession godoc
// @Summary Create a feed session
// @Description Assembles and shuffles the caller's working set and starts prefetching
// @Tags feed
// @Accept json
// @Produce json
// @Param request body models.CreateSessionRequest false "Session options"
// @Success 201 {object} models.FeedState
// @Failure 400 {object} map[string]string
// @Router /api/v1/feed/sessions [post]
func (h *FeedHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	repeat := h.repeat
	if req.RepeatCount > 0 {
		repeat = req.RepeatCount
	}

	items, key := h.buildWorkingSet(middlewares.GetUserID(c), repeat)
	session := h.manager.Create(items, key)
	c.JSON(http.StatusCreated, session.Snapshot())
}

// GetFeed godoc
// @Summary Feed state snapshot
// @Description Returns the session's displayed list and loading flags; a changed dataset identity triggers a refresh
// @Tags feed
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} models.FeedState
// @Failure 404 {object} map[string]string
// @Router /api/v1/feed/sessions/{id} [get]
func (h *FeedHandler) GetFeed(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	// The identity check is cheap; the working set is only assembled and
	// reshuffled when the key actually changed.
	snapshot := session.Snapshot()
	custom := h.customRecords(middlewares.GetUserID(c))
	if key := h.datasetKey(custom); key != snapshot.DatasetIdentity {
		session.ResetDataset(feed.Assemble(custom, h.provider.Records(), h.repeat, nil), key)
		snapshot = session.Snapshot()
	}
	c.JSON(http.StatusOK, snapshot)
}

// Sentinel godoc
// @Summary End-of-list sentinel intersection
// @Tags feed
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} models.FeedState
// @Failure 404 {object} map[string]string
// @Router /api/v1/feed/sessions/{id}/sentinel [post]
func (h *FeedHandler) Sentinel(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Sentinel()
	c.JSON(http.StatusOK, session.Snapshot())
}

// Scroll godoc
// @Summary User scroll report
// @Tags feed
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param request body models.ScrollRequest false "Scroll position"
// @Success 200 {object} models.FeedState
// @Failure 404 {object} map[string]string
// @Router /api/v1/feed/sessions/{id}/scroll [post]
func (h *FeedHandler) Scroll(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req models.ScrollRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}
	session.Scroll()
	c.JSON(http.StatusOK, session.Snapshot())
}

// Retry godoc
// @Summary Retry after a load error
// @Tags feed
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} models.FeedState
// @Failure 404 {object} map[string]string
// @Router /api/v1/feed/sessions/{id}/retry [post]
func (h *FeedHandler) Retry(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Retry()
	c.JSON(http.StatusOK, session.Snapshot())
}

// Select godoc
// @Summary Open an item's detail view
// @Tags feed
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param request body models.SelectionRequest true "Selection"
// @Success 200 {object} models.DetailState
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/feed/sessions/{id}/selection [post]
func (h *FeedHandler) Select(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := session.Select(req.ItemID, req.ScrollY)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Back godoc
// @Summary Navigate back in the detail view
// @Tags feed
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} models.DetailState
// @Failure 404 {object} map[string]string
// @Router /api/v1/feed/sessions/{id}/selection/back [post]
func (h *FeedHandler) Back(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	state, err := session.Back()
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// DetailSentinel godoc
// @Summary Grow the detail view's recommendation page
// @Tags feed
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} models.DetailState
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/feed/sessions/{id}/selection/sentinel [post]
func (h *FeedHandler) DetailSentinel(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	state, err := session.DetailSentinel()
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// DeleteSession godoc
// @Summary Close a feed session
// @Tags feed
// @Produce json
// @Param id path string true "Session id"
// @Success 204
// @Router /api/v1/feed/sessions/{id} [delete]
func (h *FeedHandler) DeleteSession(c *gin.Context) {
	h.manager.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// DailyPick godoc
// @Summary Deterministic pick of the day
// @Tags feed
// @Produce json
// @Param date query string false "Date key, YYYY-MM-DD (default: today UTC)"
// @Success 200 {object} models.DailyPick
// @Failure 404 {object} map[string]string
// @Router /api/v1/feed/daily-pick [get]
func (h *FeedHandler) DailyPick(c *gin.Context) {
	dateKey := c.Query("date")
	if dateKey == "" {
		dateKey = time.Now().UTC().Format("2006-01-02")
	}

	records := h.provider.Records()
	items := make([]models.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, feed.Normalize(rec))
	}

	pick := feed.DailyPick(items, dateKey)
	if pick == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset is empty"})
		return
	}
	c.JSON(http.StatusOK, models.DailyPick{Date: dateKey, Item: pick})
}

func (h *FeedHandler) session(c *gin.Context) (*feed.Session, bool) {
	session, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return session, true
}

func (h *FeedHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, feed.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, feed.ErrNoSelection):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, feed.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
