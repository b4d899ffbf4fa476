package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf"
)

// unassignedBucket collects employees whose department is null or soft
// deleted.
const unassignedBucket = "(Unassigned)"

type HeadcountRow struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type StatusSummary struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// HeadcountByDepartment counts active, non-deleted employees per department.
func (s *Service) HeadcountByDepartment(ctx context.Context, orgID string) ([]HeadcountRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT COALESCE(d.name, $2), COUNT(1)
    FROM employees e
    LEFT JOIN departments d ON d.id = e.department_id AND d.deleted_at IS NULL
    WHERE e.org_id = $1 AND e.deleted_at IS NULL AND e.employment_status = 'active'
    GROUP BY COALESCE(d.name, $2)
    ORDER BY COALESCE(d.name, $2)
  `, orgID, unassignedBucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HeadcountRow
	for rows.Next() {
		var row HeadcountRow
		if err := rows.Scan(&row.Department, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ActiveVsInactive summarizes employment status over non-deleted employees.
func (s *Service) ActiveVsInactive(ctx context.Context, orgID string) (StatusSummary, error) {
	var summary StatusSummary
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FILTER (WHERE employment_status = 'active'),
           COUNT(1) FILTER (WHERE employment_status <> 'active')
    FROM employees
    WHERE org_id = $1 AND deleted_at IS NULL
  `, orgID).Scan(&summary.Active, &summary.Inactive)
	return summary, err
}

// HeadcountPDF renders the headcount report as a PDF document.
func (s *Service) HeadcountPDF(ctx context.Context, orgID, orgName string) ([]byte, error) {
	headcount, err := s.HeadcountByDepartment(ctx, orgID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Headcount by Department")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Organization: %s", orgName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(120, 8, "Department")
	pdf.Cell(40, 8, "Headcount")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)

	total := 0
	for _, row := range headcount {
		pdf.Cell(120, 8, row.Department)
		pdf.Cell(40, 8, fmt.Sprintf("%d", row.Count))
		pdf.Ln(7)
		total += row.Count
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(120, 8, "Total")
	pdf.Cell(40, 8, fmt.Sprintf("%d", total))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
