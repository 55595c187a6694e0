package demo

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"hrportal/internal/domain/employee"
)

var ErrNotFound = errors.New("demo: record not found")

var (
	firstNames  = []string{"Ava", "Liam", "Noah", "Mia", "Ethan", "Zoe", "Lucas", "Ivy", "Omar", "Nina", "Hugo", "Sara"}
	lastNames   = []string{"Nguyen", "Silva", "Khan", "Novak", "Okafor", "Tanaka", "Berg", "Rossi", "Moreau", "Patel"}
	departments = []employee.Ref{{ID: 1, Name: "Engineering"}, {ID: 2, Name: "Finance"}, {ID: 3, Name: "People"}, {ID: 4, Name: "Sales"}}
	positions   = []employee.Ref{{ID: 1, Name: "Software Engineer"}, {ID: 2, Name: "Accountant"}, {ID: 3, Name: "HR Partner"}, {ID: 4, Name: "Account Executive"}}
)

// EmployeeStore is the in-memory directory behind the demo pages. Nothing
// here reaches a backend; Reset returns it to the generated fixtures.
type EmployeeStore struct {
	mu        sync.RWMutex
	seed      uint64
	size      int
	employees []employee.Employee
}

func NewEmployeeStore(size int, seed uint64) *EmployeeStore {
	s := &EmployeeStore{seed: seed, size: size}
	s.Reset()
	return s
}

func (s *EmployeeStore) Reset() {
	fixtures := GenerateEmployees(s.size, s.seed)
	s.mu.Lock()
	s.employees = fixtures
	s.mu.Unlock()
}

// List returns a copy of every employee.
func (s *EmployeeStore) List() []employee.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.employees)
}

func (s *EmployeeStore) Get(id string) (employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, ErrNotFound
}

func (s *EmployeeStore) SetStatus(id string, status employee.Status) (employee.Employee, error) {
	if !status.Valid() {
		return employee.Employee{}, errors.Errorf("demo: invalid status %d", int(status))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.employees {
		if s.employees[i].ID == id {
			s.employees[i].Status = status
			return s.employees[i], nil
		}
	}
	return employee.Employee{}, ErrNotFound
}

func (s *EmployeeStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.employees, func(e employee.Employee) bool { return e.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.employees = slices.Delete(s.employees, i, i+1)
	return nil
}

// GenerateEmployees builds a deterministic fixture set for a seed.
func GenerateEmployees(n int, seed uint64) []employee.Employee {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	base := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	out := make([]employee.Employee, 0, n)
	for i := range n {
		first := firstNames[r.IntN(len(firstNames))]
		last := lastNames[r.IntN(len(lastNames))]
		d := r.IntN(len(departments))
		out = append(out, employee.Employee{
			ID:             fmt.Sprintf("demo-%03d", i+1),
			FullName:       first + " " + last,
			Email:          strings.ToLower(first+"."+last) + fmt.Sprintf("%d@example.com", i+1),
			Department:     departments[d],
			Position:       positions[d],
			JobLevel:       employee.JobLevels[r.IntN(len(employee.JobLevels))],
			EmploymentType: employee.EmployeeTypes[r.IntN(len(employee.EmployeeTypes))],
			TimeType:       employee.TimeTypes[r.IntN(len(employee.TimeTypes))],
			StartDate:      base.AddDate(0, 0, r.IntN(1200)).Format("2006-01-02"),
			Status:         employee.Statuses()[r.IntN(len(employee.Statuses()))],
		})
	}
	return out
}

// Filter is the client-side facet state of the demo directory.
type Filter struct {
	Search      string
	Departments []int
	Statuses    []employee.Status
}

// FilterEmployees narrows list by a case-insensitive name or email search and
// the department and status facets. Empty facets match everything.
func FilterEmployees(list []employee.Employee, f Filter) []employee.Employee {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]employee.Employee, 0, len(list))
	for _, e := range list {
		if term != "" && !strings.Contains(strings.ToLower(e.FullName), term) && !strings.Contains(strings.ToLower(e.Email), term) {
			continue
		}
		if len(f.Departments) > 0 && !slices.Contains(f.Departments, e.Department.ID) {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, e.Status) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Departments lists the fixture departments for the facet checkboxes.
func Departments() []employee.Ref {
	return slices.Clone(departments)
}
