package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classpoint/engage-backend/internal/config"
	"github.com/classpoint/engage-backend/internal/database"
	"github.com/classpoint/engage-backend/internal/logger"
	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
	"github.com/classpoint/engage-backend/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	pollRepo := repository.NewPollRepository(pool)
	voteRepo := repository.NewVoteRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)

	authService := service.NewAuthService(cfg, nil)
	teacherService := service.NewTeacherService(teacherRepo, authService)
	classService := service.NewClassService(classRepo)
	pollService := service.NewPollService(pollRepo, voteRepo, studentRepo, nil, 0, log)

	fmt.Println("=== Seeding Demo Data ===")

	// Demo teacher, reused when the script runs twice.
	teacher, err := teacherRepo.GetByEmail(ctx, "demo@classpoint.local")
	if err != nil {
		teacher, err = teacherService.Create(ctx, "Demo Teacher", "demo@classpoint.local", "demo-password")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create demo teacher")
		}
		fmt.Printf("Created teacher with ID: %d\n", teacher.ID)
	} else {
		fmt.Printf("Found existing teacher with ID: %d\n", teacher.ID)
	}

	class, err := classService.Create(ctx, "Demo Homeroom", teacher.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo class")
	}
	fmt.Printf("Created class %q with join code %s\n", class.Name, class.Code)

	names := []string{
		"Alice Johnson", "Ben Carter", "Chloe Nguyen", "Daniel Reyes", "Emma Schmidt",
		"Felix Hart", "Grace Liu", "Hugo Bennett", "Isla Moreau", "Jack Thompson",
		"Kara Olsen", "Liam Walsh", "Mia Fernandez", "Noah Kim", "Olivia Brooks",
		"Pedro Alves", "Quinn Harper", "Ruby Sato", "Sam Whitfield", "Tessa Romano",
	}

	successCount := 0
	for i, name := range names {
		email := fmt.Sprintf("student%02d@classpoint.local", i+1)
		student, err := studentRepo.GetOrCreate(ctx, name, email)
		if err != nil {
			fmt.Printf("Error creating student %s: %v\n", name, err)
			continue
		}

		enrollment := &model.Enrollment{StudentID: student.ID, ClassID: class.ID}
		if err := enrollmentRepo.Create(ctx, enrollment); err != nil && !errors.Is(err, repository.ErrAlreadyEnrolled) {
			fmt.Printf("Error enrolling student %s: %v\n", name, err)
			continue
		}
		successCount++
	}
	fmt.Printf("Enrolled %d/%d students\n", successCount, len(names))

	poll, _, err := pollService.Create(ctx, "Did you enjoy today's lesson?", model.PollTypeYesNoUnsure, 0, &teacher.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo poll")
	}
	fmt.Printf("Created poll %q with code %s\n", poll.Name, poll.Code)

	fmt.Println("\nSeed completed!")
}
