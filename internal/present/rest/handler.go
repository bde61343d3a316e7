package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/shelterhub/adoptd/internal/domain"
	"github.com/shelterhub/adoptd/internal/present/rest/middleware"
	"github.com/shelterhub/adoptd/internal/present/rest/presenter"
	"github.com/shelterhub/adoptd/internal/usecase"
)

// NotificationStream delivers a user's committed notifications until the
// context ends.
type NotificationStream interface {
	Listen(ctx context.Context, userID string, out chan<- domain.Notification) error
}

type Handler struct {
	info    *usecase.InfoRequestUsecase
	request *usecase.RequestUsecase
	stream  NotificationStream
}

func NewHandler(
	info *usecase.InfoRequestUsecase,
	request *usecase.RequestUsecase,
	stream NotificationStream,
) *Handler {
	return &Handler{
		info:    info,
		request: request,
		stream:  stream,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/requests/:id", h.handleDetail)
	e.POST("/api/v1/requests/:id/status", h.handleUpdateStatus)
	e.POST("/api/v1/requests/:id/info-request", h.handleRequestInfo)
	e.GET("/api/v1/requests/:id/info-request", h.handleLatestPrompt)
	e.POST("/api/v1/requests/:id/response", h.handleRespond)
	e.GET("/api/v1/requests/:id/documents/url", h.handleDocumentURL)
	e.GET("/realtime", h.handleRealtime)
}

func requestID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *Handler) handleDetail(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := requestID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid request id")
	}

	detail, err := h.request.Detail(ctx, middleware.PrincipalFrom(c), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, detail)
}

type updateStatusRequest struct {
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

func (h *Handler) handleUpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := requestID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid request id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	if req.Status == "" {
		return presenter.BadRequestMessage(c, "status is required")
	}

	err = h.request.UpdateStatus(ctx, middleware.PrincipalFrom(c), usecase.UpdateStatusInput{
		RequestID:       id,
		Target:          domain.Status(req.Status),
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": req.Status})
}

type requestInfoRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *Handler) handleRequestInfo(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := requestID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid request id")
	}

	var req requestInfoRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	err = h.info.RequestInfo(ctx, middleware.PrincipalFrom(c), usecase.RequestInfoInput{
		RequestID: id,
		Subject:   req.Subject,
		Message:   req.Message,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": string(domain.StatusInfoRequested)})
}

func (h *Handler) handleLatestPrompt(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := requestID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid request id")
	}

	msg, err := h.info.LatestPrompt(ctx, middleware.PrincipalFrom(c), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, msg)
}

func (h *Handler) handleRespond(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := requestID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid request id")
	}

	message := c.FormValue("message")

	var files []usecase.ResponseFile
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, fh := range form.File["files"] {
			src, err := fh.Open()
			if err != nil {
				return presenter.BadRequestMessage(c, "unreadable attachment")
			}
			defer src.Close()
			files = append(files, usecase.ResponseFile{
				Name:        fh.Filename,
				Size:        fh.Size,
				ContentType: fh.Header.Get("Content-Type"),
				Body:        src,
			})
		}
	}

	err = h.info.Respond(ctx, middleware.PrincipalFrom(c), usecase.RespondInput{
		RequestID: id,
		Message:   message,
		Files:     files,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": string(domain.StatusInReview)})
}

func (h *Handler) handleDocumentURL(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := requestID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid request id")
	}

	path := c.QueryParam("path")
	if path == "" {
		return presenter.BadRequestMessage(c, "path parameter is required")
	}

	url, err := h.request.DocumentURL(ctx, middleware.PrincipalFrom(c), id, path)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"url": url})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleRealtime streams the caller's notifications over a websocket.
func (h *Handler) handleRealtime(c echo.Context) error {
	principal := middleware.PrincipalFrom(c)
	if principal.IsZero() {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	output := make(chan domain.Notification)
	go func() {
		defer close(output)
		if err := h.stream.Listen(ctx, principal.UserID, output); err != nil && ctx.Err() == nil {
			slog.ErrorContext(
				ctx, "Notification stream stopped",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
		}
	}()

	// Buffered so the reader can report a dead connection even after the
	// write loop already returned and closed the socket.
	quit := make(chan struct{}, 1)

	go func() {
		for {
			var req struct {
				Type string `json:"type"`
			}
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case n, ok := <-output:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(n); err != nil {
				slog.DebugContext(
					ctx, "Error writing notification",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
