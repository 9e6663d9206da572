package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

type queryRepo struct{ s *Store }

func (r queryRepo) Create(ctx context.Context, q *model.HelpQuery) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.queries[q.ID]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := st.members[q.MemberID]; !ok {
			return repository.ErrReferenced
		}
		st.queries[q.ID] = *q
		return nil
	})
}

func (r queryRepo) List(ctx context.Context, status model.QueryStatus) ([]model.HelpQueryView, error) {
	var out []model.HelpQueryView
	err := r.s.do(ctx, func(st *state) error {
		for _, q := range st.queries {
			if status != "" && q.Status != status {
				continue
			}
			m, ok := st.members[q.MemberID]
			if !ok {
				continue
			}
			out = append(out, model.HelpQueryView{HelpQuery: q, MemberName: m.Name, MemberEmail: m.Email})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r queryRepo) Respond(ctx context.Context, id, response string, status model.QueryStatus, at time.Time) error {
	return r.s.do(ctx, func(st *state) error {
		q, ok := st.queries[id]
		if !ok {
			return repository.ErrNotFound
		}
		q.AdminResponse, q.Status, q.UpdatedAt = response, status, at
		st.queries[id] = q
		return nil
	})
}
