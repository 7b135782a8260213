package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/department"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	"github.com/jwalitptl/hospital-api/internal/service/registration"
	"github.com/jwalitptl/hospital-api/pkg/logger"
)

var departments = []string{
	"Internal Medicine",
	"Surgery",
	"Gynecology",
	"Pediatrics",
	"Orthopedics",
	"Ophthalmology",
	"Dentistry",
}

var doctors = []struct {
	name       string
	department string
}{
	{"Wei Zhang", "Internal Medicine"},
	{"Jun Li", "Internal Medicine"},
	{"Fang Wang", "Surgery"},
	{"Min Zhao", "Gynecology"},
	{"Tao Chen", "Pediatrics"},
	{"Yang Liu", "Orthopedics"},
	{"Lei Zhou", "Ophthalmology"},
	{"Li Sun", "Dentistry"},
}

var patients = []string{
	"Qiang Wu",
	"Na Zheng",
	"Hao Feng",
	"Jing Xu",
}

// Run populates the store with starter departments, doctors, and patients,
// plus one scheduled visit per patient. It is idempotent on departments:
// rerunning skips names that already exist.
func Run(ctx context.Context, store repository.Store, log *logger.Logger) error {
	departmentSvc := department.NewService(store.Departments())
	doctorSvc := doctor.NewService(store.Doctors(), store.Departments())
	patientSvc := patient.NewService(store.Patients())
	scheduler := registration.NewService(store, registration.WithLogger(log))

	departmentIDs := make(map[string]int64)
	for _, name := range departments {
		existing, err := store.Departments().GetByName(ctx, name)
		if err == nil {
			log.Info("department exists", "name", name)
			departmentIDs[name] = existing.ID
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to look up department %s: %w", name, err)
		}

		created, err := departmentSvc.CreateDepartment(ctx, &model.CreateDepartmentRequest{Name: name})
		if err != nil {
			return fmt.Errorf("failed to seed department %s: %w", name, err)
		}
		log.Info("department created", "name", name)
		departmentIDs[name] = created.ID
	}

	doctorIDs := make([]int64, 0, len(doctors))
	for _, d := range doctors {
		created, err := doctorSvc.CreateDoctor(ctx, &model.CreateDoctorRequest{
			Name:         d.name,
			DepartmentID: departmentIDs[d.department],
		})
		if err != nil {
			return fmt.Errorf("failed to seed doctor %s: %w", d.name, err)
		}
		doctorIDs = append(doctorIDs, created.ID)
	}

	now := time.Now()
	for idx, name := range patients {
		created, err := patientSvc.CreatePatient(ctx, &model.CreatePatientRequest{Name: name})
		if err != nil {
			return fmt.Errorf("failed to seed patient %s: %w", name, err)
		}

		d := doctors[idx%len(doctors)]
		day := now.AddDate(0, 0, idx+1)
		visit := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, day.Location())
		if _, err := scheduler.CreateRegistration(ctx, &model.CreateRegistrationRequest{
			PatientID:    created.ID,
			DoctorID:     doctorIDs[idx%len(doctors)],
			DepartmentID: departmentIDs[d.department],
			VisitTime:    visit,
		}); err != nil {
			return fmt.Errorf("failed to seed registration for %s: %w", name, err)
		}
	}

	log.Info("seed complete",
		"departments", len(departments),
		"doctors", len(doctors),
		"patients", len(patients),
	)
	return nil
}
