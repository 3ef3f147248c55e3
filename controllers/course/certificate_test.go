package controllers

import (
	"fmt"
	"net/http"
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestCertificate(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "student@example.com")
	course, _, lessons := seedCourse(t, db, 2)
	app := newTestApp(user.ID)

	certPath := fmt.Sprintf("/course/%d/certificate/request", course.ID)

	// Not enrolled
	status, _ := doJSON(t, app, http.MethodPost, certPath, nil)
	assert.Equal(t, http.StatusForbidden, status)

	enroll(t, app, course.ID)

	// Enrolled but not done
	status, env := doJSON(t, app, http.MethodPost, certPath, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please complete the course before requesting a certificate!", env.Message)

	for _, lesson := range lessons {
		s, _ := completeLessonReq(t, app, course.ID, lesson.ID)
		require.Equal(t, http.StatusOK, s)
	}

	status, _ = doJSON(t, app, http.MethodPost, certPath, nil)
	require.Equal(t, http.StatusCreated, status)

	var cert courseModels.Certificate
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&cert).Error)
	assert.NotEmpty(t, cert.CertificateNumber)
	assert.False(t, cert.IssuedAt.IsZero())

	// A second request returns the existing certificate, never a duplicate
	status, _ = doJSON(t, app, http.MethodPost, certPath, nil)
	assert.Equal(t, http.StatusConflict, status)

	var count int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
