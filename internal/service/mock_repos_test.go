package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/repository"
	pkgerrors "visa-consultancy/backend/pkg/errors"
)

// memStore backs every mock repository. Records are stored and returned by
// value so a caller mutating a loaded record changes nothing until Update.
type memStore struct {
	mu  sync.Mutex
	ids int

	students     map[string]model.Student
	universities map[string]model.University
	courses      map[string]model.Course
	consultants  map[string]model.Consultant
	applications map[string]model.Application
	documents    map[string]model.Document
	payments     map[string]model.Payment
	invoices     map[string]model.Invoice
	lines        map[string]model.InvoiceLine
	sequences    map[string]model.Sequence
	dashboards   []model.Dashboard
}

func newMemStore() *memStore {
	return &memStore{
		students:     make(map[string]model.Student),
		universities: make(map[string]model.University),
		courses:      make(map[string]model.Course),
		consultants:  make(map[string]model.Consultant),
		applications: make(map[string]model.Application),
		documents:    make(map[string]model.Document),
		payments:     make(map[string]model.Payment),
		invoices:     make(map[string]model.Invoice),
		lines:        make(map[string]model.InvoiceLine),
		sequences: map[string]model.Sequence{
			model.SequenceApplication: {Code: model.SequenceApplication, Prefix: "APP", Padding: 5, NextNumber: 1},
			model.SequencePayment:     {Code: model.SequencePayment, Prefix: "PAY", Padding: 5, NextNumber: 1},
			model.SequenceInvoice:     {Code: model.SequenceInvoice, Prefix: "INV", Padding: 5, NextNumber: 1},
		},
	}
}

// newMockRepository wires every mock onto one store. The aggregate has no
// connection, so RunInTx and ReadSnapshot call straight through.
func newMockRepository() (*repository.Repository, *memStore) {
	st := newMemStore()
	return &repository.Repository{
		Student:     &mockStudentRepo{st},
		University:  &mockUniversityRepo{st},
		Course:      &mockCourseRepo{st},
		Consultant:  &mockConsultantRepo{st},
		Application: &mockApplicationRepo{st},
		Document:    &mockDocumentRepo{st},
		Payment:     &mockPaymentRepo{st},
		Invoice:     &mockInvoiceRepo{st},
		Sequence:    &mockSequenceRepo{st},
		Dashboard:   &mockDashboardRepo{st},
	}, st
}

func (s *memStore) newID(prefix string) string {
	s.ids++
	return fmt.Sprintf("%s-%04d", prefix, s.ids)
}

func stamp(b *model.BaseModel) {
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func page[T any](items []T, f repository.ListFilter) []T {
	if f.Offset > 0 {
		if f.Offset >= len(items) {
			return nil
		}
		items = items[f.Offset:]
	}
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items
}

func ptrEq(p *string, v string) bool {
	return v == "" || (p != nil && *p == v)
}

func contains(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ── Mock StudentRepository ──

type mockStudentRepo struct{ st *memStore }

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, s := range m.st.students {
		if s.Email == student.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if student.StudentID == "" {
		student.StudentID = m.st.newID("stu")
	}
	student.Version = 1
	stamp(&student.BaseModel)
	m.st.students[student.StudentID] = *student
	return nil
}

func (m *mockStudentRepo) get(id string) (*model.Student, error) {
	s, ok := m.st.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s.ConsultantID != nil {
		if c, ok := m.st.consultants[*s.ConsultantID]; ok {
			s.Consultant = &c
		}
	}
	return &s, nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	return m.get(id)
}

func (m *mockStudentRepo) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, s := range m.st.students {
		if s.Email == email {
			return m.get(s.StudentID)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByPassport(_ context.Context, passport string) (*model.Student, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, s := range m.st.students {
		if s.PassportNumber != nil && *s.PassportNumber == passport {
			return m.get(s.StudentID)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) match(f repository.ListFilter) []model.Student {
	var out []model.Student
	for _, k := range sortedKeys(m.st.students) {
		s := m.st.students[k]
		if f.State != "" && string(s.State) != f.State {
			continue
		}
		if !ptrEq(s.ConsultantID, f.ConsultantID) {
			continue
		}
		if f.Search != "" && !contains(s.Name, f.Search) && !contains(s.Email, f.Search) && !contains(s.Phone, f.Search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (m *mockStudentRepo) List(_ context.Context, f repository.ListFilter) ([]model.Student, int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	all := m.match(f)
	return page(all, f), int64(len(all)), nil
}

func (m *mockStudentRepo) Count(_ context.Context, f repository.ListFilter) (int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	return int64(len(m.match(f))), nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	cur, ok := m.st.students[student.StudentID]
	if !ok || cur.Version != student.Version {
		return pkgerrors.ErrOptimisticLock
	}
	student.Version++
	stamp(&student.BaseModel)
	stored := *student
	stored.Consultant = nil
	m.st.students[student.StudentID] = stored
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.students, id)
	for k, a := range m.st.applications {
		if a.StudentID == id {
			delete(m.st.applications, k)
		}
	}
	for k, d := range m.st.documents {
		if d.StudentID == id {
			delete(m.st.documents, k)
		}
	}
	for k, p := range m.st.payments {
		if p.StudentID == id {
			delete(m.st.payments, k)
		}
	}
	return nil
}

// ── Mock UniversityRepository / CourseRepository ──

type mockUniversityRepo struct{ st *memStore }

func (m *mockUniversityRepo) Create(_ context.Context, u *model.University) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if u.UniversityID == "" {
		u.UniversityID = m.st.newID("uni")
	}
	u.Version = 1
	stamp(&u.BaseModel)
	m.st.universities[u.UniversityID] = *u
	return nil
}

func (m *mockUniversityRepo) GetByID(_ context.Context, id string) (*model.University, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	u, ok := m.st.universities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *mockUniversityRepo) List(_ context.Context, f repository.ListFilter) ([]model.University, int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var out []model.University
	for _, k := range sortedKeys(m.st.universities) {
		u := m.st.universities[k]
		if contains(u.Name, f.Search) {
			out = append(out, u)
		}
	}
	return page(out, f), int64(len(out)), nil
}

func (m *mockUniversityRepo) Update(_ context.Context, u *model.University) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	cur, ok := m.st.universities[u.UniversityID]
	if !ok || cur.Version != u.Version {
		return pkgerrors.ErrOptimisticLock
	}
	u.Version++
	stamp(&u.BaseModel)
	m.st.universities[u.UniversityID] = *u
	return nil
}

func (m *mockUniversityRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.universities[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.universities, id)
	for k, c := range m.st.courses {
		if c.UniversityID == id {
			delete(m.st.courses, k)
		}
	}
	return nil
}

type mockCourseRepo struct{ st *memStore }

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if c.CourseID == "" {
		c.CourseID = m.st.newID("crs")
	}
	c.Version = 1
	stamp(&c.BaseModel)
	m.st.courses[c.CourseID] = *c
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	c, ok := m.st.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m *mockCourseRepo) ListByUniversity(_ context.Context, universityID string) ([]model.Course, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var out []model.Course
	for _, k := range sortedKeys(m.st.courses) {
		if c := m.st.courses[k]; c.UniversityID == universityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) CountByUniversity(ctx context.Context, universityID string) (int64, error) {
	courses, _ := m.ListByUniversity(ctx, universityID)
	return int64(len(courses)), nil
}

func (m *mockCourseRepo) Update(_ context.Context, c *model.Course) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	cur, ok := m.st.courses[c.CourseID]
	if !ok || cur.Version != c.Version {
		return pkgerrors.ErrOptimisticLock
	}
	c.Version++
	stamp(&c.BaseModel)
	m.st.courses[c.CourseID] = *c
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.courses, id)
	return nil
}

// ── Mock ConsultantRepository ──

type mockConsultantRepo struct{ st *memStore }

func (m *mockConsultantRepo) Create(_ context.Context, c *model.Consultant) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if c.ConsultantID == "" {
		c.ConsultantID = m.st.newID("con")
	}
	c.Version = 1
	stamp(&c.BaseModel)
	m.st.consultants[c.ConsultantID] = *c
	return nil
}

func (m *mockConsultantRepo) GetByID(_ context.Context, id string) (*model.Consultant, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	c, ok := m.st.consultants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m *mockConsultantRepo) List(_ context.Context, f repository.ListFilter) ([]model.Consultant, int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var out []model.Consultant
	for _, k := range sortedKeys(m.st.consultants) {
		c := m.st.consultants[k]
		if contains(c.Name, f.Search) {
			out = append(out, c)
		}
	}
	return page(out, f), int64(len(out)), nil
}

func (m *mockConsultantRepo) Update(_ context.Context, c *model.Consultant) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	cur, ok := m.st.consultants[c.ConsultantID]
	if !ok || cur.Version != c.Version {
		return pkgerrors.ErrOptimisticLock
	}
	c.Version++
	stamp(&c.BaseModel)
	m.st.consultants[c.ConsultantID] = *c
	return nil
}

func (m *mockConsultantRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.consultants[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.consultants, id)
	return nil
}

func (m *mockConsultantRepo) Metrics(_ context.Context, id string) (model.ConsultantMetrics, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var out model.ConsultantMetrics
	for _, s := range m.st.students {
		if ptrEq(s.ConsultantID, id) {
			out.TotalStudents++
		}
	}
	for _, a := range m.st.applications {
		if !ptrEq(a.ConsultantID, id) {
			continue
		}
		out.TotalApplications++
		if a.State == model.ApplicationVisaApproved {
			out.ApprovedApplications++
		}
	}
	return out, nil
}

// ── Mock ApplicationRepository ──

type mockApplicationRepo struct{ st *memStore }

func (m *mockApplicationRepo) Create(_ context.Context, app *model.Application) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, a := range m.st.applications {
		if a.Name == app.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if app.ApplicationID == "" {
		app.ApplicationID = m.st.newID("app")
	}
	app.Version = 1
	stamp(&app.BaseModel)
	m.st.applications[app.ApplicationID] = *app
	return nil
}

func (m *mockApplicationRepo) NameExists(_ context.Context, name string) (bool, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, existing := range m.st.applications {
		if existing.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApplicationRepo) preload(a model.Application) model.Application {
	if s, ok := m.st.students[a.StudentID]; ok {
		a.Student = &s
	}
	if u, ok := m.st.universities[a.UniversityID]; ok {
		a.University = &u
	}
	if a.CourseID != nil {
		if c, ok := m.st.courses[*a.CourseID]; ok {
			a.Course = &c
		}
	}
	return a
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	a, ok := m.st.applications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	a = m.preload(a)
	return &a, nil
}

func (m *mockApplicationRepo) GetByIDForUpdate(_ context.Context, id string) (*model.Application, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	a, ok := m.st.applications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m *mockApplicationRepo) match(f repository.ListFilter) []model.Application {
	var out []model.Application
	for _, k := range sortedKeys(m.st.applications) {
		a := m.st.applications[k]
		if f.State != "" && string(a.State) != f.State {
			continue
		}
		if (f.StudentID != "" && a.StudentID != f.StudentID) ||
			(f.UniversityID != "" && a.UniversityID != f.UniversityID) ||
			!ptrEq(a.ConsultantID, f.ConsultantID) || !contains(a.Name, f.Search) {
			continue
		}
		out = append(out, m.preload(a))
	}
	return out
}

func (m *mockApplicationRepo) List(_ context.Context, f repository.ListFilter) ([]model.Application, int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	all := m.match(f)
	return page(all, f), int64(len(all)), nil
}

func (m *mockApplicationRepo) Count(_ context.Context, f repository.ListFilter) (int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	return int64(len(m.match(f))), nil
}

func (m *mockApplicationRepo) Update(_ context.Context, app *model.Application) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	cur, ok := m.st.applications[app.ApplicationID]
	if !ok || cur.Version != app.Version {
		return pkgerrors.ErrOptimisticLock
	}
	app.Version++
	stamp(&app.BaseModel)
	stored := *app
	stored.Student, stored.University, stored.Course, stored.Consultant = nil, nil, nil, nil
	m.st.applications[app.ApplicationID] = stored
	return nil
}

func (m *mockApplicationRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.applications[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.applications, id)
	for k, d := range m.st.documents {
		if ptrEq(d.ApplicationID, id) {
			delete(m.st.documents, k)
		}
	}
	for k, p := range m.st.payments {
		if ptrEq(p.ApplicationID, id) {
			delete(m.st.payments, k)
		}
	}
	return nil
}

// ── Mock DocumentRepository ──

type mockDocumentRepo struct{ st *memStore }

func (m *mockDocumentRepo) Create(_ context.Context, doc *model.Document) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if doc.DocumentID == "" {
		doc.DocumentID = m.st.newID("doc")
	}
	doc.Version = 1
	stamp(&doc.BaseModel)
	m.st.documents[doc.DocumentID] = *doc
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id string) (*model.Document, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	d, ok := m.st.documents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (m *mockDocumentRepo) match(f repository.ListFilter) []model.Document {
	var out []model.Document
	for _, k := range sortedKeys(m.st.documents) {
		d := m.st.documents[k]
		if f.State != "" && string(d.State) != f.State {
			continue
		}
		if (f.StudentID != "" && d.StudentID != f.StudentID) ||
			!ptrEq(d.ApplicationID, f.ApplicationID) || !contains(d.Name, f.Search) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (m *mockDocumentRepo) List(_ context.Context, f repository.ListFilter) ([]model.Document, int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	all := m.match(f)
	return page(all, f), int64(len(all)), nil
}

func (m *mockDocumentRepo) Count(_ context.Context, f repository.ListFilter) (int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	return int64(len(m.match(f))), nil
}

func (m *mockDocumentRepo) Update(_ context.Context, doc *model.Document) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	cur, ok := m.st.documents[doc.DocumentID]
	if !ok || cur.Version != doc.Version {
		return pkgerrors.ErrOptimisticLock
	}
	doc.Version++
	stamp(&doc.BaseModel)
	m.st.documents[doc.DocumentID] = *doc
	return nil
}

func (m *mockDocumentRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.documents[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.documents, id)
	return nil
}

func (m *mockDocumentRepo) StatesByApplication(_ context.Context, applicationID string) ([]model.DocumentState, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var out []model.DocumentState
	for _, k := range sortedKeys(m.st.documents) {
		if d := m.st.documents[k]; ptrEq(d.ApplicationID, applicationID) {
			out = append(out, d.State)
		}
	}
	return out, nil
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct{ st *memStore }

func (m *mockPaymentRepo) Create(_ context.Context, p *model.Payment) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, existing := range m.st.payments {
		if existing.Name == p.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.PaymentID == "" {
		p.PaymentID = m.st.newID("pay")
	}
	p.Version = 1
	stamp(&p.BaseModel)
	m.st.payments[p.PaymentID] = *p
	return nil
}

func (m *mockPaymentRepo) NameExists(_ context.Context, name string) (bool, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, existing := range m.st.payments {
		if existing.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.Payment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	p, ok := m.st.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s, ok := m.st.students[p.StudentID]; ok {
		p.Student = &s
	}
	return &p, nil
}

func (m *mockPaymentRepo) GetByIDForUpdate(_ context.Context, id string) (*model.Payment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	p, ok := m.st.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (m *mockPaymentRepo) match(f repository.ListFilter) []model.Payment {
	var out []model.Payment
	for _, k := range sortedKeys(m.st.payments) {
		p := m.st.payments[k]
		if f.State != "" && string(p.State) != f.State {
			continue
		}
		if (f.StudentID != "" && p.StudentID != f.StudentID) ||
			!ptrEq(p.ApplicationID, f.ApplicationID) || !contains(p.Name, f.Search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (m *mockPaymentRepo) List(_ context.Context, f repository.ListFilter) ([]model.Payment, int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	all := m.match(f)
	return page(all, f), int64(len(all)), nil
}

func (m *mockPaymentRepo) Count(_ context.Context, f repository.ListFilter) (int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	return int64(len(m.match(f))), nil
}

func (m *mockPaymentRepo) Update(_ context.Context, p *model.Payment) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	cur, ok := m.st.payments[p.PaymentID]
	if !ok || cur.Version != p.Version {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version++
	stamp(&p.BaseModel)
	stored := *p
	stored.Student = nil
	m.st.payments[p.PaymentID] = stored
	return nil
}

func (m *mockPaymentRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.payments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.payments, id)
	return nil
}

func (m *mockPaymentRepo) SumPaid(_ context.Context, f repository.ListFilter) (float64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	f.State = string(model.PaymentPaid)
	var sum float64
	for _, p := range m.match(f) {
		sum += p.Amount
	}
	return sum, nil
}

// ── Mock InvoiceRepository ──

type mockInvoiceRepo struct{ st *memStore }

func (m *mockInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, existing := range m.st.invoices {
		if existing.Name == inv.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if inv.InvoiceID == "" {
		inv.InvoiceID = m.st.newID("inv")
	}
	inv.Version = 1
	stamp(&inv.BaseModel)
	for i := range inv.Lines {
		inv.Lines[i].InvoiceID = inv.InvoiceID
		if inv.Lines[i].InvoiceLineID == "" {
			inv.Lines[i].InvoiceLineID = m.st.newID("line")
		}
		m.st.lines[inv.Lines[i].InvoiceLineID] = inv.Lines[i]
	}
	header := *inv
	header.Lines, header.Student = nil, nil
	m.st.invoices[inv.InvoiceID] = header
	return nil
}

func (m *mockInvoiceRepo) NameExists(_ context.Context, name string) (bool, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, existing := range m.st.invoices {
		if existing.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockInvoiceRepo) load(inv model.Invoice) model.Invoice {
	inv.Lines = nil
	for _, k := range sortedKeys(m.st.lines) {
		if l := m.st.lines[k]; l.InvoiceID == inv.InvoiceID {
			inv.Lines = append(inv.Lines, l)
		}
	}
	sort.SliceStable(inv.Lines, func(i, j int) bool { return inv.Lines[i].Sequence < inv.Lines[j].Sequence })
	if s, ok := m.st.students[inv.StudentID]; ok {
		inv.Student = &s
	}
	return inv
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id string) (*model.Invoice, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	inv, ok := m.st.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	inv = m.load(inv)
	return &inv, nil
}

func (m *mockInvoiceRepo) List(_ context.Context, f repository.ListFilter) ([]model.Invoice, int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var out []model.Invoice
	for _, k := range sortedKeys(m.st.invoices) {
		inv := m.st.invoices[k]
		if f.State != "" && string(inv.State) != f.State {
			continue
		}
		if (f.StudentID != "" && inv.StudentID != f.StudentID) || !contains(inv.Name, f.Search) {
			continue
		}
		out = append(out, m.load(inv))
	}
	return page(out, f), int64(len(out)), nil
}

func (m *mockInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	cur, ok := m.st.invoices[inv.InvoiceID]
	if !ok || cur.Version != inv.Version {
		return pkgerrors.ErrOptimisticLock
	}
	cur.InvoiceDate = inv.InvoiceDate
	cur.DueDate = inv.DueDate
	cur.State = inv.State
	cur.Subtotal = inv.Subtotal
	cur.TaxAmount = inv.TaxAmount
	cur.TotalAmount = inv.TotalAmount
	cur.Notes = inv.Notes
	cur.UpdatedBy = inv.UpdatedBy
	cur.Version++
	stamp(&cur.BaseModel)
	m.st.invoices[inv.InvoiceID] = cur
	inv.Version = cur.Version
	return nil
}

func (m *mockInvoiceRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.invoices[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.invoices, id)
	for k, l := range m.st.lines {
		if l.InvoiceID == id {
			delete(m.st.lines, k)
		}
	}
	for k, p := range m.st.payments {
		if ptrEq(p.InvoiceID, id) {
			p.InvoiceID = nil
			m.st.payments[k] = p
		}
	}
	return nil
}

func (m *mockInvoiceRepo) CreateLine(_ context.Context, line *model.InvoiceLine) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if line.InvoiceLineID == "" {
		line.InvoiceLineID = m.st.newID("line")
	}
	m.st.lines[line.InvoiceLineID] = *line
	return nil
}

func (m *mockInvoiceRepo) GetLine(_ context.Context, id string) (*model.InvoiceLine, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	l, ok := m.st.lines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (m *mockInvoiceRepo) UpdateLine(_ context.Context, line *model.InvoiceLine) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.lines[line.InvoiceLineID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.st.lines[line.InvoiceLineID] = *line
	return nil
}

func (m *mockInvoiceRepo) DeleteLine(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.lines, id)
	return nil
}

// ── Mock SequenceRepository ──

type mockSequenceRepo struct{ st *memStore }

func (m *mockSequenceRepo) Next(_ context.Context, code string) (string, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	seq, ok := m.st.sequences[code]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	n := seq.NextNumber
	seq.NextNumber++
	m.st.sequences[code] = seq
	return seq.Format(n), nil
}

func (m *mockSequenceRepo) Ensure(_ context.Context, code, prefix string, padding int) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	seq, ok := m.st.sequences[code]
	if !ok {
		seq = model.Sequence{Code: code, NextNumber: 1}
	}
	seq.Prefix = prefix
	seq.Padding = padding
	m.st.sequences[code] = seq
	return nil
}

// ── Mock DashboardRepository ──

type mockDashboardRepo struct{ st *memStore }

func (m *mockDashboardRepo) Anchor(_ context.Context) (*model.Dashboard, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if len(m.st.dashboards) == 0 {
		m.st.dashboards = append(m.st.dashboards, model.Dashboard{DashboardID: 1, Name: "Visa Dashboard", CreatedAt: time.Now()})
	}
	d := m.st.dashboards[0]
	return &d, nil
}

func (m *mockDashboardRepo) Counts(_ context.Context, monthStart, today time.Time) (*model.DashboardStatistics, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	s := &model.DashboardStatistics{}
	for _, st := range m.st.students {
		s.TotalStudents++
		if !st.CreatedAt.Before(monthStart) {
			s.StudentsThisMonth++
		}
	}
	for _, a := range m.st.applications {
		s.TotalApplications++
		if !a.CreatedAt.Before(monthStart) {
			s.ApplicationsThisMonth++
		}
		switch a.State {
		case model.ApplicationDraft:
			s.DraftApplications++
		case model.ApplicationInProgress:
			s.InProgressApplications++
		case model.ApplicationVisaApproved:
			s.ApprovedApplications++
		case model.ApplicationRejected:
			s.RejectedApplications++
		}
	}
	for _, p := range m.st.payments {
		if p.State == model.PaymentPaid {
			s.TotalRevenue += p.Amount
			if !p.PaymentDate.Before(monthStart) {
				s.RevenueThisMonth += p.Amount
			}
		}
		if p.DueDate != nil && p.DueDate.Before(today) && p.State != model.PaymentPaid {
			s.OverduePayments++
		}
	}
	for _, d := range m.st.documents {
		if d.State == model.DocumentPending || d.State == model.DocumentReceived {
			s.PendingDocuments++
		}
	}
	return s, nil
}
