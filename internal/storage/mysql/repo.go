package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"aproz_tours/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type Repo struct{ db *sql.DB }

var _ domain.TourRepository = (*Repo)(nil)

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertTour(ctx context.Context, t domain.Tour, position int) error {
	images := t.Images
	if images == nil {
		images = []string{}
	}
	imgs, err := valJSON(images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	title, err := valJSON(t.Title)
	if err != nil {
		return fmt.Errorf("marshal title: %w", err)
	}
	desc, err := valJSON(t.Desc)
	if err != nil {
		return fmt.Errorf("marshal desc: %w", err)
	}
	var price any
	if t.Price != nil {
		if price, err = valJSON(t.Price); err != nil {
			return fmt.Errorf("marshal price: %w", err)
		}
	}
	_, err = r.db.ExecContext(ctx, upsertTourSQL,
		t.Slug,
		valStr(t.Name),
		imgs,
		title,
		desc,
		price,
		position,
	)
	return err
}

// PruneTours deletes every tour whose slug is not in keep.
func (r *Repo) PruneTours(ctx context.Context, keep []string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if len(keep) == 0 {
		res, err = r.db.ExecContext(ctx, deleteAllToursSQL)
	} else {
		args := make([]any, len(keep))
		for i, s := range keep {
			args[i] = s
		}
		q := pruneToursPrefix + strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",") + ")"
		res, err = r.db.ExecContext(ctx, q, args...)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) ListTours(ctx context.Context) ([]domain.Tour, error) {
	rows, err := r.db.QueryContext(ctx, listToursSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Tour{}
	for rows.Next() {
		var t domain.Tour
		var name sql.NullString
		var imagesJSON, titleJSON, descJSON []byte
		var priceJSON sql.RawBytes
		if err := rows.Scan(&t.Slug, &name, &imagesJSON, &titleJSON, &descJSON, &priceJSON); err != nil {
			return nil, err
		}
		if name.Valid {
			t.Name = name.String
		}
		if err := json.Unmarshal(imagesJSON, &t.Images); err != nil {
			return nil, fmt.Errorf("tour %s images: %w", t.Slug, err)
		}
		if t.Images == nil {
			t.Images = []string{}
		}
		if len(titleJSON) > 0 {
			if err := json.Unmarshal(titleJSON, &t.Title); err != nil {
				return nil, fmt.Errorf("tour %s title: %w", t.Slug, err)
			}
		}
		if len(descJSON) > 0 {
			if err := json.Unmarshal(descJSON, &t.Desc); err != nil {
				return nil, fmt.Errorf("tour %s desc: %w", t.Slug, err)
			}
		}
		if len(priceJSON) > 0 {
			var p domain.Localized
			if err := json.Unmarshal(priceJSON, &p); err != nil {
				return nil, fmt.Errorf("tour %s price: %w", t.Slug, err)
			}
			t.Price = &p
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
