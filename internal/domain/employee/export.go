package employee

import "hrportal/internal/platform/export"

// DirectoryTable lays employees out for the XLSX directory export.
func DirectoryTable(employees []Employee) export.Table {
	t := export.Table{
		Title:   "Employee directory",
		Headers: []string{"Name", "Email", "Department", "Position", "Job level", "Employment type", "Time type", "Manager", "HR", "Start date", "Status"},
		Rows:    make([][]string, 0, len(employees)),
	}
	for _, e := range employees {
		t.Rows = append(t.Rows, []string{
			e.FullName,
			e.Email,
			e.Department.Name,
			e.Position.Name,
			e.JobLevel,
			EmployeeTypeLabel(e.EmploymentType),
			e.TimeType,
			e.ManagerName,
			e.HRName,
			e.StartDate,
			e.Status.Label(),
		})
	}
	return t
}
