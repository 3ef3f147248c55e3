package controllers

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollCreatesActiveEnrollment(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "student@example.com")
	course, _, _ := seedCourse(t, db, 2, 2)
	app := newTestApp(user.ID)

	status, env := doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/enroll", course.ID),
		map[string]interface{}{"price_cents": 4999, "access_type": "paid"})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Status)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, courseModels.EnrollmentActive, enrollment.Status)
	assert.Equal(t, 4999, enrollment.PriceCents)
	assert.Equal(t, "paid", enrollment.AccessType)
	assert.Equal(t, 4, enrollment.TotalLessons)
	assert.Equal(t, 0, enrollment.CompletedLessons)

	var got courseModels.Course
	require.NoError(t, db.First(&got, course.ID).Error)
	assert.Equal(t, 1, got.EnrolledStudents)
}

func TestEnrollDefaultsToOpenAccess(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "student@example.com")
	course, _, _ := seedCourse(t, db, 1)
	app := newTestApp(user.ID)

	status, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/enroll", course.ID), nil)
	require.Equal(t, http.StatusOK, status)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&enrollment).Error)
	assert.Equal(t, "open", enrollment.AccessType)
	assert.Equal(t, 0, enrollment.PriceCents)
}

func TestEnrollAlreadyEnrolledConflict(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "student@example.com")
	course, _, _ := seedCourse(t, db, 1)
	app := newTestApp(user.ID)

	enroll(t, app, course.ID)

	status, env := doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/enroll", course.ID), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Status)

	// No duplicate row, counter untouched
	var count int64
	db.Model(&courseModels.Enrollment{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	var got courseModels.Course
	require.NoError(t, db.First(&got, course.ID).Error)
	assert.Equal(t, 1, got.EnrolledStudents)
}

func TestEnrollCourseNotFound(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "student@example.com")
	app := newTestApp(user.ID)

	status, _ := doJSON(t, app, http.MethodPost, "/course/999/enroll", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var count int64
	db.Model(&courseModels.Enrollment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestReactivationPreservesEnrollmentIdentity(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "student@example.com")
	course, _, _ := seedCourse(t, db, 2)
	app := newTestApp(user.ID)

	// enroll -> cancel -> enroll
	status, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/enroll", course.ID),
		map[string]interface{}{"price_cents": 1000})
	require.Equal(t, http.StatusOK, status)

	var first courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&first).Error)

	status, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/unenroll", course.ID), nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/enroll", course.ID),
		map[string]interface{}{"price_cents": 2500, "access_type": "paid"})
	require.Equal(t, http.StatusOK, status)

	// Exactly one row, same identity, refreshed fields
	var enrollments []courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&enrollments).Error)
	require.Len(t, enrollments, 1)
	assert.Equal(t, first.ID, enrollments[0].ID)
	assert.Equal(t, courseModels.EnrollmentActive, enrollments[0].Status)
	assert.Equal(t, 2500, enrollments[0].PriceCents)
	assert.Equal(t, "paid", enrollments[0].AccessType)
	assert.True(t, enrollments[0].EnrolledAt.After(first.EnrolledAt) || enrollments[0].EnrolledAt.Equal(first.EnrolledAt))

	// Counter nets to the same value as a single continuous enrollment
	var got courseModels.Course
	require.NoError(t, db.First(&got, course.ID).Error)
	assert.Equal(t, 1, got.EnrolledStudents)
}

func TestCancelWithoutActiveEnrollment(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "student@example.com")
	course, _, _ := seedCourse(t, db, 1)
	app := newTestApp(user.ID)

	status, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/unenroll", course.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCancelNeverDrivesCounterNegative(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "student@example.com")
	course, _, _ := seedCourse(t, db, 1)
	app := newTestApp(user.ID)

	enroll(t, app, course.ID)

	// First cancel succeeds, repeated cancels are terminal no-ops
	status, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/unenroll", course.ID), nil)
	require.Equal(t, http.StatusOK, status)

	for i := 0; i < 3; i++ {
		status, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/unenroll", course.ID), nil)
		assert.Equal(t, http.StatusNotFound, status)
	}

	var got courseModels.Course
	require.NoError(t, db.First(&got, course.ID).Error)
	assert.Equal(t, 0, got.EnrolledStudents)
}

func TestConcurrentDoubleEnroll(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "student@example.com")
	course, _, _ := seedCourse(t, db, 1)
	app := newTestApp(user.ID)

	var wg sync.WaitGroup
	statuses := make([]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i], _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/course/%d/enroll", course.ID), nil)
		}(i)
	}
	wg.Wait()

	// Exactly one net active row and one counter increment
	successes := 0
	for _, s := range statuses {
		if s == http.StatusOK {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one of the two racing enrolls must win")

	var count int64
	db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status = ?", user.ID, course.ID, courseModels.EnrollmentActive).
		Count(&count)
	assert.Equal(t, int64(1), count)

	var got courseModels.Course
	require.NoError(t, db.First(&got, course.ID).Error)
	assert.Equal(t, 1, got.EnrolledStudents)
}
