package handler

import (
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/oelgazzar/nidgate/internal/api/request"
	"github.com/oelgazzar/nidgate/internal/api/response"
	"github.com/oelgazzar/nidgate/internal/core"
	"github.com/oelgazzar/nidgate/internal/model"
)

type Usage struct {
	svc    *core.UsageService
	logger zerolog.Logger
}

func NewUsage(svc *core.UsageService, logger zerolog.Logger) *Usage {
	return &Usage{svc: svc, logger: logger}
}

// List returns recorded requests with a total count for paging. Filters come
// from query parameters; status_code is compared numerically. The page and
// the count are independent queries, so they run in parallel.
func (h *Usage) List(w http.ResponseWriter, r *http.Request) {
	filters := request.Filters(r, "status_code")
	page := request.ParsePage(r)

	var (
		rows  []model.Usage
		total int64
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		rows, err = h.svc.FilterParams(ctx, page, filters)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.svc.Count(ctx, filters)
		return err
	})
	if err := g.Wait(); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.WriteList(w, http.StatusOK, rows, total)
}
