package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orchid-lms/orchid-go-api/internal/config"
	"github.com/orchid-lms/orchid-go-api/internal/handler"
	"github.com/orchid-lms/orchid-go-api/internal/models"
	"github.com/orchid-lms/orchid-go-api/internal/repository"
	"github.com/orchid-lms/orchid-go-api/internal/router"
	"github.com/orchid-lms/orchid-go-api/internal/service"
	"github.com/orchid-lms/orchid-go-api/internal/utils"
)

// testJWT trusts the X-Test-User and X-Test-Role headers so role enforcement
// can be exercised without minting real tokens.
func testJWT(c *fiber.Ctx) error {
	if user := c.Get("X-Test-User"); user != "" {
		var id uint
		_, _ = fmt.Sscanf(user, "%d", &id)
		c.Locals("user_id", id)
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

func setupQuizApp(t *testing.T, dbName string) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizSubmission{},
		&models.QuizAnswer{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	quizRepo := repository.NewQuizRepository(db)
	quizSubmissionRepo := repository.NewQuizSubmissionRepository(db)

	quizService, err := service.NewQuizService(quizRepo, nil, validate, logger)
	require.NoError(t, err)
	quizSubmissionService := service.NewQuizSubmissionService(quizRepo, quizSubmissionRepo, validate, nil, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		QuizHandler:           handler.NewQuizHandler(quizService, validate, logger),
		QuizSubmissionHandler: handler.NewQuizSubmissionHandler(quizSubmissionService, logger),
		JWTMiddleware:         testJWT,
	})

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}, userID, role string) (*utils.APIResponse, int) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	request := httptest.NewRequest(method, path, body)
	request.Header.Set("Content-Type", "application/json")
	if userID != "" {
		request.Header.Set("X-Test-User", userID)
	}
	if role != "" {
		request.Header.Set("X-Test-Role", role)
	}

	response, err := app.Test(request, -1)
	require.NoError(t, err)

	var parsed utils.APIResponse
	require.NoError(t, json.NewDecoder(response.Body).Decode(&parsed))
	return &parsed, response.StatusCode
}

func TestQuizCreateAndSubmitFlow(t *testing.T) {
	app, _ := setupQuizApp(t, "quizflow")

	created, status := doJSON(t, app, "POST", "/api/v1/quizzes", fiber.Map{
		"course_id": 1,
		"title":     "Week 1 quiz",
		"questions": []fiber.Map{
			{"text": "2+2?", "type": "single_choice", "options": []string{"3", "4"}, "correct_answer": "4", "points": 5},
		},
	}, "1", "teacher")
	require.Equal(t, fiber.StatusCreated, status)
	require.True(t, created.Success)

	quiz := created.Data.(map[string]interface{})
	quizID := uint(quiz["id"].(float64))
	questions := quiz["questions"].([]interface{})
	questionID := uint(questions[0].(map[string]interface{})["id"].(float64))

	submitted, status := doJSON(t, app, "POST", "/api/v1/quizzes/submit", fiber.Map{
		"quiz_id": quizID,
		"answers": []fiber.Map{{"question_id": questionID, "answer": "4"}},
	}, "2", "student")
	require.Equal(t, fiber.StatusCreated, status)
	require.True(t, submitted.Success)

	result := submitted.Data.(map[string]interface{})
	require.Equal(t, float64(5), result["score"])
	require.Equal(t, true, result["graded"])

	// Second attempt on a single-attempt quiz is a policy violation.
	denied, status := doJSON(t, app, "POST", "/api/v1/quizzes/submit", fiber.Map{
		"quiz_id": quizID,
		"answers": []fiber.Map{{"question_id": questionID, "answer": "4"}},
	}, "2", "student")
	require.Equal(t, fiber.StatusForbidden, status)
	require.False(t, denied.Success)
	require.Equal(t, utils.ErrKindPolicy, denied.Error)
}

func TestQuizCreateRequiresTeacherRole(t *testing.T) {
	app, _ := setupQuizApp(t, "quizroles")

	response, status := doJSON(t, app, "POST", "/api/v1/quizzes", fiber.Map{
		"course_id": 1,
		"title":     "Forbidden quiz",
		"questions": []fiber.Map{
			{"text": "Q", "type": "free_text", "points": 1},
		},
	}, "2", "student")
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, utils.ErrKindPolicy, response.Error)
}

func TestQuizGetHidesAnswers(t *testing.T) {
	app, _ := setupQuizApp(t, "quizhide")

	created, status := doJSON(t, app, "POST", "/api/v1/quizzes", fiber.Map{
		"course_id": 1,
		"title":     "Hidden answers",
		"questions": []fiber.Map{
			{"text": "Pick.", "type": "single_choice", "options": []string{"a", "b"}, "correct_answer": "b", "points": 1},
		},
	}, "1", "teacher")
	require.Equal(t, fiber.StatusCreated, status)

	quizID := uint(created.Data.(map[string]interface{})["id"].(float64))

	fetched, status := doJSON(t, app, "GET", fmt.Sprintf("/api/v1/quizzes/%d", quizID), nil, "2", "student")
	require.Equal(t, fiber.StatusOK, status)

	raw, err := json.Marshal(fetched.Data)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "correct_answer")
}

func TestQuizSubmitUnknownQuiz(t *testing.T) {
	app, _ := setupQuizApp(t, "quizmissing")

	response, status := doJSON(t, app, "POST", "/api/v1/quizzes/submit", fiber.Map{
		"quiz_id": 12345,
		"answers": []fiber.Map{},
	}, "2", "student")
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, utils.ErrKindNotFound, response.Error)
}
