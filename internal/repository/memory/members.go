package memory

import (
	"context"
	"sort"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
)

type memberRepo struct{ s *Store }

func emailTaken(st *state, m *model.Member) bool {
	for id, other := range st.members {
		if id != m.ID && other.Email == m.Email {
			return true
		}
	}
	return false
}

func (r memberRepo) Create(ctx context.Context, m *model.Member) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.members[m.ID]; ok || emailTaken(st, m) {
			return repository.ErrDuplicate
		}
		st.members[m.ID] = *m
		return nil
	})
}

func (r memberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var out model.Member
	err := r.s.do(ctx, func(st *state) error {
		m, ok := st.members[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r memberRepo) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	var out model.Member
	err := r.s.do(ctx, func(st *state) error {
		for _, m := range st.members {
			if m.Email == email {
				out = m
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r memberRepo) List(ctx context.Context, f model.MemberFilter) ([]model.Member, int, error) {
	var matched []model.Member
	err := r.s.do(ctx, func(st *state) error {
		for _, m := range st.members {
			if m.Role != model.RoleMember {
				continue
			}
			if f.Search != "" && !contains(m.Name, f.Search) && !contains(m.Email, f.Search) {
				continue
			}
			matched = append(matched, m)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, f.Page, f.Limit), len(matched), nil
}

// Update replaces the profile fields; the password hash and role are kept.
func (r memberRepo) Update(ctx context.Context, m *model.Member) error {
	return r.s.do(ctx, func(st *state) error {
		cur, ok := st.members[m.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if emailTaken(st, m) {
			return repository.ErrDuplicate
		}
		cur.Email, cur.Name, cur.Phone, cur.Address = m.Email, m.Name, m.Phone, m.Address
		cur.UpdatedAt = m.UpdatedAt
		st.members[m.ID] = cur
		return nil
	})
}

// Delete refuses while any loan references the member and cascades
// reservations and queries.
func (r memberRepo) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.members[id]; !ok {
			return repository.ErrNotFound
		}
		for _, l := range st.loans {
			if l.MemberID == id {
				return repository.ErrReferenced
			}
		}
		for rid, res := range st.reservations {
			if res.MemberID == id {
				delete(st.reservations, rid)
			}
		}
		for qid, q := range st.queries {
			if q.MemberID == id {
				delete(st.queries, qid)
			}
		}
		delete(st.members, id)
		return nil
	})
}
