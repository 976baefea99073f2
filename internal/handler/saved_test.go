package handler_test

import (
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/course-marketplace/internal/model"
)

type savedBody struct {
	SavedCourses []model.SavedCourse `json:"savedCourses"`
}

func TestSavedCourses_Lifecycle(t *testing.T) {
	e := newEnv(t)
	ines := e.user(t, "ines", model.RoleInstructor)
	e.user(t, "alice", model.RoleLearner)
	course := e.course(t, ines, "Go Basics", "programming", 0)

	rr := e.do(t, http.MethodPost, "/api/courses/saved", "alice", `{"courseId":"`+course.ID+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = e.do(t, http.MethodPost, "/api/courses/saved", "alice", `{"courseId":"`+course.ID+`"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "conflict", decode[errorBody](t, rr).Error)

	rr = e.do(t, http.MethodGet, "/api/courses/saved", "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	saved := decode[savedBody](t, rr).SavedCourses
	require.Len(t, saved, 1)
	assert.Equal(t, "Go Basics", saved[0].Course.Title)

	rr = e.do(t, http.MethodDelete, "/api/courses/saved/"+course.ID, "alice", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = e.do(t, http.MethodDelete, "/api/courses/saved/"+course.ID, "alice", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/courses/saved", "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"savedCourses":[]}`, rr.Body.String())
}

func TestSaveCourse_Rejections(t *testing.T) {
	e := newEnv(t)
	ines := e.user(t, "ines", model.RoleInstructor)
	e.user(t, "alice", model.RoleLearner)
	course := e.course(t, ines, "Go Basics", "programming", time.Hour)

	tests := []struct {
		name       string
		as         string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing courseId", "alice", `{}`, http.StatusBadRequest, "validation_error"},
		{"empty body", "alice", ``, http.StatusBadRequest, "validation_error"},
		{"malformed JSON", "alice", `{"courseId":`, http.StatusBadRequest, "validation_error"},
		{"unknown field", "alice", `{"courseId":"x","extra":1}`, http.StatusBadRequest, "validation_error"},
		{"unknown course", "alice", `{"courseId":"nope"}`, http.StatusNotFound, "not_found"},
		{"instructor has no bookmarks", "ines", `{"courseId":"` + course.ID + `"}`, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := e.do(t, http.MethodPost, "/api/courses/saved", tt.as, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantCode, decode[errorBody](t, rr).Error)
		})
	}
}

func TestSaveCourse_MissingFieldMessage(t *testing.T) {
	e := newEnv(t)
	e.user(t, "alice", model.RoleLearner)

	rr := e.do(t, http.MethodPost, "/api/courses/saved", "alice", `{}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "courseId is required", decode[errorBody](t, rr).Message)
}

// Concurrent saves of the same pair produce exactly one 201; the rest see 409.
func TestSaveCourse_ConcurrentDuplicates(t *testing.T) {
	e := newEnv(t)
	ines := e.user(t, "ines", model.RoleInstructor)
	e.user(t, "alice", model.RoleLearner)
	course := e.course(t, ines, "Go Basics", "programming", 0)

	const n = 10
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := e.do(t, http.MethodPost, "/api/courses/saved", "alice", `{"courseId":"`+course.ID+`"}`)
			codes[i] = rr.Code
		}()
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)
}

func TestSaveCourse_TooLongID(t *testing.T) {
	e := newEnv(t)
	e.user(t, "alice", model.RoleLearner)

	rr := e.do(t, http.MethodPost, "/api/courses/saved", "alice", `{"courseId":"`+strings.Repeat("x", 65)+`"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "courseId must be at most 64 characters", decode[errorBody](t, rr).Message)
}
