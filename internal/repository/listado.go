package repository

import (
	"context"
	"strings"

	"github.com/ChristianJLC/web/internal/dto"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// contarYBuscar runs the count and the page query of a listing concurrently.
// filtrar must only add WHERE clauses so both queries see the same rows.
func contarYBuscar(ctx context.Context, db *gorm.DB, modelo interface{},
	filtrar func(*gorm.DB) *gorm.DB, buscar func(*gorm.DB) error) (int64, error) {

	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return filtrar(db.WithContext(gctx).Model(modelo)).Count(&total).Error
	})
	g.Go(func() error {
		return buscar(filtrar(db.WithContext(gctx).Model(modelo)))
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total, nil
}

// buscarTexto matches l.Q case-insensitively against any of the given columns.
func buscarTexto(q *gorm.DB, l dto.Listado, columnas ...string) *gorm.DB {
	if l.Q == "" || len(columnas) == 0 {
		return q
	}
	patron := l.Patron()
	conds := make([]string, len(columnas))
	args := make([]interface{}, len(columnas))
	for i, c := range columnas {
		conds[i] = likeInsensible(c)
		args[i] = patron
	}
	return q.Where("("+strings.Join(conds, " OR ")+")", args...)
}

func likeInsensible(col string) string {
	return "LOWER(" + col + `) LIKE ? ESCAPE '\'`
}

// rangoFechas applies the inclusive [Desde, Hasta] bounds on col.
func rangoFechas(q *gorm.DB, l dto.Listado, col string) *gorm.DB {
	if l.Desde != nil {
		q = q.Where(col+" >= ?", *l.Desde)
	}
	if l.Hasta != nil {
		q = q.Where(col+" <= ?", *l.Hasta)
	}
	return q
}

// ordenar resolves a sort key through cols; the id tie-breaker keeps paging stable.
func ordenar(q *gorm.DB, l dto.Listado, cols map[string]string, tabla string) *gorm.DB {
	col, ok := cols[l.Sort]
	if !ok {
		return q.Order(tabla + ".id")
	}
	return q.Order(col + " " + l.Direction()).Order(tabla + ".id")
}
