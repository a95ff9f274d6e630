package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/config"
	"github.com/stemsi/edulink/internal/database"
	"github.com/stemsi/edulink/internal/logger"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/repository"
	"github.com/stemsi/edulink/internal/service"
)

type demoSchool struct {
	name     string
	city     string
	students [][3]string // first name, last name, class
}

var demo = []demoSchool{
	{
		name: "Lycée Bilingue d'Essos",
		city: "Yaoundé",
		students: [][3]string{
			{"Paul", "Kamga", "6e A"},
			{"Brice", "Nkoulou", "6e A"},
			{"Carine", "Mbarga", "5e B"},
		},
	},
	{
		name: "Collège de la Retraite",
		city: "Yaoundé",
		students: [][3]string{
			{"Aminata", "Kamga", "CM2"},
			{"Dieudonné", "Essomba", "CM1"},
		},
	},
}

// Seeds two schools, their rosters, and Jean Kamga as guardian of Paul in the first
// school. Re-running is safe: existing rows are found and reused.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	schoolRepo := repository.NewSchoolRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	personRepo := repository.NewPersonRepository(pool)
	relationshipRepo := repository.NewRelationshipRepository(pool)

	personService := service.NewPersonService(personRepo, repository.NewIdentityFlagRepository(pool), log)
	linker := service.NewRelationshipLinkerService(relationshipRepo, nil, log)

	fmt.Println("=== Seeding demo schools ===")

	var schools []*model.School
	var paul *model.Student
	for _, ds := range demo {
		school, err := ensureSchool(ctx, schoolRepo, ds.name, ds.city)
		if err != nil {
			log.Fatal().Err(err).Str("school", ds.name).Msg("Failed to seed school")
		}
		schools = append(schools, school)
		fmt.Printf("School %-28s %s\n", school.Name, school.ID)

		for _, s := range ds.students {
			st, err := ensureStudent(ctx, studentRepo, school.ID, s[0], s[1], s[2], log)
			if err != nil {
				log.Fatal().Err(err).Str("student", s[0]+" "+s[1]).Msg("Failed to seed student")
			}
			fmt.Printf("  Student %-24s %s\n", st.FullName(), st.ID)
			if st.FirstName == "Paul" && st.LastName == "Kamga" {
				paul = st
			}
		}
	}

	reg, err := personService.Register(ctx, model.RegisterPersonRequest{
		FirstName:  "Jean",
		LastName:   "Kamga",
		Email:      "jean.kamga@gmail.com",
		Phone:      "+237678901234",
		Profession: "Ingénieur",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register Jean Kamga")
	}
	fmt.Printf("Person  %-28s %s (created=%t)\n", reg.Person.FullName(), reg.Person.ID, reg.Created)

	_, err = linker.LinkGuardian(ctx, service.LinkGuardianInput{
		PersonID:  reg.Person.ID,
		StudentID: paul.ID,
		SchoolID:  schools[0].ID,
		Attributes: model.GuardianAttributes{
			RelationshipType: model.RelationshipParent,
			IsPrimaryContact: true,
			CanPickup:        true,
			EmergencyContact: true,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to link Jean Kamga to Paul")
	}

	fmt.Println("=== Done. Aminata is left unlinked for the second-school walkthrough ===")
}

func ensureSchool(ctx context.Context, repo *repository.SchoolRepository, name, city string) (*model.School, error) {
	school, err := repo.FindByName(ctx, name, city)
	if err == nil {
		return school, nil
	}
	if !errors.Is(err, repository.ErrSchoolNotFound) {
		return nil, err
	}
	school = &model.School{Name: name, City: city}
	if err := repo.Create(ctx, school); err != nil {
		return nil, err
	}
	return school, nil
}

func ensureStudent(ctx context.Context, repo *repository.StudentRepository, schoolID, first, last, class string, log zerolog.Logger) (*model.Student, error) {
	roster, err := repo.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	for i := range roster {
		if roster[i].FirstName == first && roster[i].LastName == last {
			return &roster[i], nil
		}
	}

	st := &model.Student{FirstName: first, LastName: last, SchoolID: schoolID, ClassName: class}
	if err := repo.Create(ctx, st); err != nil {
		return nil, err
	}
	log.Debug().Str("student_id", st.ID).Str("school_id", schoolID).Msg("student created")
	return st, nil
}
