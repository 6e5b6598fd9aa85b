package dto

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const fechaLayout = "2006-01-02"

// ─── Query string ────────────────────────────────────────────────────────────

// ListadoQuery is bound from the query string of every listing endpoint.
// Numbers are kept as strings so malformed input falls back to defaults
// instead of failing the bind.
type ListadoQuery struct {
	Q        string `form:"q"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     string `form:"page"`
	PageSize string `form:"pageSize"`
	Sort     string `form:"sort"`
	Dir      string `form:"dir"`
}

// ListadoConfig describes the accepted values for one entity.
type ListadoConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	SortKeys        []string
	DefaultSort     string
	DefaultDesc     bool
	ConFechas       bool
}

// Listado is the normalised form of ListadoQuery. Desde/Hasta are nil when
// the entity has no date filter or the bound was missing or malformed.
type Listado struct {
	Q        string
	Desde    *time.Time
	Hasta    *time.Time
	Page     int
	PageSize int
	Sort     string
	Desc     bool
}

// Normalizar applies defaults and clamps. It never fails.
func (q ListadoQuery) Normalizar(cfg ListadoConfig) Listado {
	l := Listado{
		Q:        strings.TrimSpace(q.Q),
		Page:     1,
		PageSize: cfg.DefaultPageSize,
		Sort:     cfg.DefaultSort,
		Desc:     cfg.DefaultDesc,
	}

	if n, err := strconv.Atoi(strings.TrimSpace(q.Page)); err == nil {
		l.Page = max(1, n)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(q.PageSize)); err == nil {
		l.PageSize = n
	}
	l.PageSize = min(max(1, l.PageSize), cfg.MaxPageSize)

	sort := strings.ToLower(strings.TrimSpace(q.Sort))
	for _, k := range cfg.SortKeys {
		if k == sort {
			l.Sort = k
			break
		}
	}
	switch strings.ToLower(strings.TrimSpace(q.Dir)) {
	case "asc":
		l.Desc = false
	case "desc":
		l.Desc = true
	}

	if cfg.ConFechas {
		if d, err := time.Parse(fechaLayout, strings.TrimSpace(q.From)); err == nil {
			l.Desde = &d
		}
		if d, err := time.Parse(fechaLayout, strings.TrimSpace(q.To)); err == nil {
			// inclusive: extend to the last instant of the day
			end := d.Add(24*time.Hour - time.Nanosecond)
			l.Hasta = &end
		}
	}
	return l
}

// Offset returns the number of rows to skip for the current page.
func (l Listado) Offset() int { return (l.Page - 1) * l.PageSize }

// Direction returns the SQL keyword for the sort direction.
func (l Listado) Direction() string {
	if l.Desc {
		return "DESC"
	}
	return "ASC"
}

// Patron returns the lower-cased LIKE pattern for Q with wildcards escaped.
func (l Listado) Patron() string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(l.Q)) + "%"
}

// ─── Response ────────────────────────────────────────────────────────────────

// Pagina is the envelope returned by every listing endpoint.
type Pagina[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NuevaPagina builds the envelope; a nil slice is rendered as [].
func NuevaPagina[T any](data []T, total int64, l Listado) Pagina[T] {
	if data == nil {
		data = []T{}
	}
	return Pagina[T]{
		Data:       data,
		Total:      total,
		Page:       l.Page,
		PageSize:   l.PageSize,
		TotalPages: TotalPages(total, l.PageSize),
	}
}

// TotalPages is ceil(total/pageSize), never less than 1.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(float64(total)/float64(pageSize))))
}
