package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/response"
)

// CreativesLister はクリエイティブ一覧の取得元。
type CreativesLister interface {
	List(ctx context.Context) ([]model.Creative, error)
}

// CreativesHandler は外部クリエイティブAPIへのプロキシハンドラー。
type CreativesHandler struct {
	lister CreativesLister
}

// NewCreativesHandler はCreativesHandlerを生成する。
func NewCreativesHandler(lister CreativesLister) *CreativesHandler {
	return &CreativesHandler{lister: lister}
}

// List はクリエイティブ一覧を返す。
// 上流の失敗はプロセスを巻き込まず502に変換する。
// GET /api/creatives
func (h *CreativesHandler) List(w http.ResponseWriter, r *http.Request) {
	creatives, err := h.lister.List(r.Context())
	if err != nil {
		slog.Error("failed to list creatives",
			slog.String("dependency", "creatives"),
			slog.String("error", err.Error()),
		)
		response.WriteError(w, http.StatusBadGateway, model.NewUpstreamFailedError("creatives"))
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string][]model.Creative{"creatives": creatives})
}
