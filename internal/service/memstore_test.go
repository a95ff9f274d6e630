package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/query"
	"github.com/stemsi/edulink/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// memStore mirrors the PostgreSQL schema: the same unique indexes, the same foreign keys
// and the same orderings, behind one mutex.
type memStore struct {
	mu       sync.Mutex
	clock    time.Time
	persons  []model.Person
	schools  map[string]model.School
	students map[string]model.Student
	rels     []model.Relationship
	flags    []model.IdentityFlag

	// down makes every call fail with errStoreDown.
	down bool
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		schools:  map[string]model.School{},
		students: map[string]model.Student{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) addSchool(name, city string) model.School {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := model.School{ID: uuid.NewString(), Name: name, City: city, CreatedAt: m.tick()}
	m.schools[s.ID] = s
	return s
}

func (m *memStore) addStudent(schoolID, first, last string) model.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := model.Student{ID: uuid.NewString(), FirstName: first, LastName: last, SchoolID: schoolID, CreatedAt: m.tick()}
	m.students[s.ID] = s
	return s
}

func (m *memStore) setDown(down bool) {
	m.mu.Lock()
	m.down = down
	m.mu.Unlock()
}

func (m *memStore) personCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.persons)
}

func fieldValue(p *model.Person, f query.Field) string {
	switch f {
	case query.FieldFirstName:
		return p.FirstName
	case query.FieldLastName:
		return p.LastName
	case query.FieldEmail:
		return deref(p.Email)
	case query.FieldPhone:
		return deref(p.Phone)
	}
	return ""
}

func matches(p *model.Person, g query.Group) bool {
	for _, pred := range g.Predicates() {
		v := fieldValue(p, pred.Field)
		if v == "" {
			continue
		}
		switch {
		case pred.Kind == query.KindSubstring:
			if strings.Contains(strings.ToLower(v), strings.ToLower(pred.Value)) {
				return true
			}
		case pred.FoldCase:
			if strings.EqualFold(v, pred.Value) {
				return true
			}
		default:
			if v == pred.Value {
				return true
			}
		}
	}
	return false
}

// PersonStore

func (m *memStore) GetByID(_ context.Context, id string) (*model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errStoreDown
	}
	for _, p := range m.persons {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrPersonNotFound
}

func (m *memStore) Search(_ context.Context, g query.Group, limit int) ([]model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errStoreDown
	}
	var out []model.Person
	for _, p := range m.persons {
		if matches(&p, g) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) FindFirst(_ context.Context, g query.Group) (*model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errStoreDown
	}
	// persons is kept in created_at order.
	for _, p := range m.persons {
		if matches(&p, g) {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrPersonNotFound
}

// identityTaken emulates persons_email_lower_key and persons_phone_key.
func (m *memStore) identityTaken(p *model.Person) error {
	for _, o := range m.persons {
		if o.ID == p.ID {
			continue
		}
		if p.Email != nil && o.Email != nil && strings.EqualFold(*p.Email, *o.Email) {
			return repository.ErrDuplicateEmail
		}
		if p.Phone != nil && o.Phone != nil && *p.Phone == *o.Phone {
			return repository.ErrDuplicatePhone
		}
	}
	return nil
}

func (m *memStore) InsertIfAbsent(_ context.Context, p *model.Person) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return false, errStoreDown
	}
	if m.identityTaken(p) != nil {
		return false, nil
	}
	p.ID = uuid.NewString()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	m.persons = append(m.persons, *p)
	return true, nil
}

func (m *memStore) UpdateContact(_ context.Context, p *model.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errStoreDown
	}
	if err := m.identityTaken(p); err != nil {
		return err
	}
	for i := range m.persons {
		if m.persons[i].ID == p.ID {
			p.UpdatedAt = m.tick()
			m.persons[i].Email, m.persons[i].Phone = p.Email, p.Phone
			m.persons[i].Profession, m.persons[i].Address = p.Profession, p.Address
			m.persons[i].UpdatedAt = p.UpdatedAt
			return nil
		}
	}
	return repository.ErrPersonNotFound
}

// RelationshipStore

func (m *memStore) checkRefs(rel *model.Relationship) error {
	found := false
	for _, p := range m.persons {
		if p.ID == rel.PersonID {
			found = true
			break
		}
	}
	if !found {
		return repository.ErrPersonMissing
	}
	if _, ok := m.schools[rel.SchoolID]; !ok {
		return repository.ErrSchoolMissing
	}
	if rel.StudentID != nil {
		st, ok := m.students[*rel.StudentID]
		if !ok || st.SchoolID != rel.SchoolID {
			return repository.ErrStudentNotInSchool
		}
	}
	return nil
}

// primaryTaken emulates relationships_one_primary_per_student.
func (m *memStore) primaryTaken(rel *model.Relationship, selfID string) bool {
	if !rel.IsPrimaryContact {
		return false
	}
	for _, o := range m.rels {
		if o.ID != selfID && o.IsActive && o.IsPrimaryContact && o.StudentID != nil && *o.StudentID == *rel.StudentID {
			return true
		}
	}
	return false
}

func (m *memStore) UpsertGuardian(_ context.Context, rel *model.Relationship) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return false, errStoreDown
	}
	if err := m.checkRefs(rel); err != nil {
		return false, err
	}

	for i := range m.rels {
		o := &m.rels[i]
		if o.StudentID == nil || o.PersonID != rel.PersonID || *o.StudentID != *rel.StudentID || o.SchoolID != rel.SchoolID {
			continue
		}
		if m.primaryTaken(rel, o.ID) {
			return false, repository.ErrPrimaryContactTaken
		}
		o.RelationshipType = rel.RelationshipType
		o.IsPrimaryContact = rel.IsPrimaryContact
		o.CanPickup = rel.CanPickup
		o.EmergencyContact = rel.EmergencyContact
		o.IsActive = true
		o.UpdatedAt = m.tick()
		*rel = *o
		return false, nil
	}

	if m.primaryTaken(rel, "") {
		return false, repository.ErrPrimaryContactTaken
	}
	m.insertRel(rel)
	return true, nil
}

func (m *memStore) UpsertStaff(_ context.Context, rel *model.Relationship) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return false, errStoreDown
	}
	if err := m.checkRefs(rel); err != nil {
		return false, err
	}

	for i := range m.rels {
		o := &m.rels[i]
		if o.StudentID != nil || o.PersonID != rel.PersonID || o.SchoolID != rel.SchoolID ||
			*o.ClassName != *rel.ClassName || *o.Subject != *rel.Subject {
			continue
		}
		o.RelationshipType = rel.RelationshipType
		o.IsActive = true
		o.UpdatedAt = m.tick()
		*rel = *o
		return false, nil
	}

	m.insertRel(rel)
	return true, nil
}

func (m *memStore) insertRel(rel *model.Relationship) {
	rel.ID = uuid.NewString()
	rel.IsActive = true
	rel.CreatedAt = m.tick()
	rel.UpdatedAt = rel.CreatedAt
	m.rels = append(m.rels, *rel)
}

func (m *memStore) Deactivate(_ context.Context, schoolID, id string) (*model.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errStoreDown
	}
	for i := range m.rels {
		if m.rels[i].ID == id && m.rels[i].SchoolID == schoolID {
			m.rels[i].IsActive = false
			m.rels[i].UpdatedAt = m.tick()
			cp := m.rels[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrRelationshipNotFound
}

func (m *memStore) schoolRef(id string) model.SchoolRef {
	s := m.schools[id]
	return model.SchoolRef{ID: s.ID, Name: s.Name, City: s.City}
}

func (m *memStore) ActiveSummaries(_ context.Context, personIDs []string) ([]model.SummaryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errStoreDown
	}
	want := map[string]bool{}
	for _, id := range personIDs {
		want[id] = true
	}

	var out []model.SummaryRow
	for _, r := range m.rels {
		if !r.IsActive || !want[r.PersonID] {
			continue
		}
		row := model.SummaryRow{PersonID: r.PersonID, School: m.schoolRef(r.SchoolID)}
		if r.StudentID != nil {
			st := m.students[*r.StudentID]
			row.StudentID, row.StudentFirstName, row.StudentLastName = st.ID, st.FirstName, st.LastName
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PersonID != b.PersonID {
			return a.PersonID < b.PersonID
		}
		if a.School.Name != b.School.Name {
			return a.School.Name < b.School.Name
		}
		if a.StudentLastName != b.StudentLastName {
			return a.StudentLastName < b.StudentLastName
		}
		return a.StudentFirstName < b.StudentFirstName
	})
	return out, nil
}

func (m *memStore) ListByPerson(_ context.Context, personID string) ([]model.RelationshipDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errStoreDown
	}
	var out []model.RelationshipDetail
	for _, r := range m.rels {
		if r.PersonID != personID {
			continue
		}
		d := model.RelationshipDetail{Relationship: r, School: m.schools[r.SchoolID]}
		if r.StudentID != nil {
			st := m.students[*r.StudentID]
			d.Student = &st
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].School.Name < out[j].School.Name
	})
	return out, nil
}

// IdentityFlagStore

func (m *memStore) Create(_ context.Context, f *model.IdentityFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errStoreDown
	}
	f.ID = uuid.NewString()
	f.CreatedAt = m.tick()
	m.flags = append(m.flags, *f)
	return nil
}

func (m *memStore) ListOpen(_ context.Context, limit int) ([]model.IdentityFlag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errStoreDown
	}
	var out []model.IdentityFlag
	for _, f := range m.flags {
		if f.ResolvedAt == nil && len(out) < limit {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memStore) Resolve(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errStoreDown
	}
	for i := range m.flags {
		if m.flags[i].ID == id && m.flags[i].ResolvedAt == nil {
			now := m.tick()
			m.flags[i].ResolvedAt = &now
			return nil
		}
	}
	return repository.ErrFlagNotFound
}

// memCache is a StatisticsCache that counts hits and can be made to fail.
type memCache struct {
	mu       sync.Mutex
	entries  map[string]model.Statistics
	versions map[string]int64
	hits     int
	broken   bool
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]model.Statistics{}, versions: map[string]int64{}}
}

func (c *memCache) Version(_ context.Context, personID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return 0, errStoreDown
	}
	return c.versions[personID], nil
}

func (c *memCache) Get(_ context.Context, personID string) (*model.Statistics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return nil, errStoreDown
	}
	s, ok := c.entries[personID]
	if !ok {
		return nil, nil
	}
	c.hits++
	return &s, nil
}

func (c *memCache) Set(_ context.Context, personID string, version int64, stats model.Statistics) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return errStoreDown
	}
	if c.versions[personID] != version {
		return nil
	}
	c.entries[personID] = stats
	return nil
}

func (c *memCache) Invalidate(_ context.Context, personID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return errStoreDown
	}
	delete(c.entries, personID)
	c.versions[personID]++
	return nil
}

// memSchools adapts memStore to SchoolStore and StudentStore; GetByID would otherwise
// clash with the person lookup.
type memSchools struct{ m *memStore }

func (s memSchools) GetByID(_ context.Context, id string) (*model.School, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.down {
		return nil, errStoreDown
	}
	sc, ok := s.m.schools[id]
	if !ok {
		return nil, repository.ErrSchoolNotFound
	}
	return &sc, nil
}

func (s memSchools) GetInSchool(_ context.Context, schoolID, id string) (*model.Student, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.down {
		return nil, errStoreDown
	}
	st, ok := s.m.students[id]
	if !ok || st.SchoolID != schoolID {
		return nil, repository.ErrStudentNotFound
	}
	return &st, nil
}

func (s memSchools) ListBySchool(_ context.Context, schoolID string) ([]model.Student, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.down {
		return nil, errStoreDown
	}
	var out []model.Student
	for _, st := range s.m.students {
		if st.SchoolID == schoolID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}
