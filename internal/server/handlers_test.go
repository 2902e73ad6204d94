package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords(t *testing.T) {
	s := newTestServer("")
	s.llm = &fakeLLM{response: "Go, PostgreSQL\nDocker"}

	rec := doRequest(s, postJSON("/extract-keywords", map[string]string{
		"job_description": "We are hiring a backend engineer with Go and PostgreSQL experience.",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, []any{"Go", "PostgreSQL", "Docker"}, body["keywords"])
}

func TestExtractKeywords_TooShort(t *testing.T) {
	s := newTestServer("")

	rec := doRequest(s, postJSON("/extract-keywords", map[string]string{
		"job_description": "too short",
	}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeJSON(t, rec)["error"], "at least 30 characters")
}

func TestExtractKeywords_MissingField(t *testing.T) {
	s := newTestServer("")

	rec := doRequest(s, postJSON("/extract-keywords", map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractKeywords_LLMFailure(t *testing.T) {
	s := newTestServer("")
	s.llm = &fakeLLM{err: errors.New("quota exceeded")}

	rec := doRequest(s, postJSON("/extract-keywords", map[string]string{
		"job_description": "We are hiring a backend engineer with Go and PostgreSQL experience.",
	}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRewriteEndpoints(t *testing.T) {
	for _, path := range []string{"/ai-rewrite-job-description", "/ai-rewrite-project-description"} {
		t.Run(path, func(t *testing.T) {
			s := newTestServer("")
			s.llm = &fakeLLM{response: "Shipped a thing that mattered"}

			rec := doRequest(s, postJSON(path, map[string]any{
				"bullet_points": []string{"did a thing"},
			}))

			require.Equal(t, http.StatusOK, rec.Code)
			body := decodeJSON(t, rec)
			assert.Equal(t, []any{"Shipped a thing that mattered"}, body["bullet_points"])
		})
	}
}

func TestRewrite_EmptyBullets(t *testing.T) {
	s := newTestServer("")

	for _, payload := range []map[string]any{
		{"bullet_points": []string{}},
		{},
	} {
		rec := doRequest(s, postJSON("/ai-rewrite-job-description", payload))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestSaveAndFetchResume(t *testing.T) {
	s := newTestServer("")
	cookie := authedCookie(t, s, "u1", "a@b.com")

	req := postJSON("/resumes", map[string]string{
		"title": "Backend Engineer",
		"html":  "<html><body>resume</body></html>",
	})
	req.AddCookie(cookie)
	rec := doRequest(s, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeJSON(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	// Fetch it back
	get := httptest.NewRequest("GET", "/resumes/"+id, nil)
	get.AddCookie(cookie)
	rec = doRequest(s, get)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "Backend Engineer", body["title"])

	// And it shows up in the listing
	list := httptest.NewRequest("GET", "/resumes", nil)
	list.AddCookie(cookie)
	rec = doRequest(s, list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON(t, rec)["resumes"], 1)
}

func TestSaveResume_InvalidPayload(t *testing.T) {
	s := newTestServer("")
	cookie := authedCookie(t, s, "u1", "a@b.com")

	req := postJSON("/resumes", map[string]string{"title": "no html"})
	req.AddCookie(cookie)
	rec := doRequest(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetResume_ScopedToOwner(t *testing.T) {
	s := newTestServer("")
	owner := authedCookie(t, s, "u1", "a@b.com")
	other := authedCookie(t, s, "u2", "c@d.com")

	req := postJSON("/resumes", map[string]string{
		"title": "Private",
		"html":  "<html><body>mine</body></html>",
	})
	req.AddCookie(owner)
	id := decodeJSON(t, doRequest(s, req))["id"].(string)

	get := httptest.NewRequest("GET", "/resumes/"+id, nil)
	get.AddCookie(other)
	rec := doRequest(s, get)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetResume_BadID(t *testing.T) {
	s := newTestServer("")
	cookie := authedCookie(t, s, "u1", "a@b.com")

	get := httptest.NewRequest("GET", "/resumes/not-a-uuid", nil)
	get.AddCookie(cookie)
	rec := doRequest(s, get)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteResume(t *testing.T) {
	s := newTestServer("")
	cookie := authedCookie(t, s, "u1", "a@b.com")

	req := postJSON("/resumes", map[string]string{
		"title": "Doomed",
		"html":  "<html><body>x</body></html>",
	})
	req.AddCookie(cookie)
	id := decodeJSON(t, doRequest(s, req))["id"].(string)

	del := httptest.NewRequest("DELETE", "/resumes/"+id, nil)
	del.AddCookie(cookie)
	require.Equal(t, http.StatusNoContent, doRequest(s, del).Code)

	get := httptest.NewRequest("GET", "/resumes/"+id, nil)
	get.AddCookie(cookie)
	assert.Equal(t, http.StatusNotFound, doRequest(s, get).Code)
}

func TestGeneratePDF_MissingHTML(t *testing.T) {
	s := newTestServer("")
	cookie := authedCookie(t, s, "u1", "a@b.com")

	req := postJSON("/generate-pdf", map[string]string{})
	req.AddCookie(cookie)
	rec := doRequest(s, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeJSON(t, rec)["error"], "html is required")
}

func TestGeneratePDF_EmptyDocument(t *testing.T) {
	s := newTestServer("")
	cookie := authedCookie(t, s, "u1", "a@b.com")

	// Validation rejects the document before any browser is started.
	req := postJSON("/generate-pdf", map[string]string{
		"html": "<html><body>   </body></html>",
	})
	req.AddCookie(cookie)
	rec := doRequest(s, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeJSON(t, rec)["error"], "no renderable content")
}

func TestLoginPage(t *testing.T) {
	s := newTestServer("")

	rec := doRequest(s, httptest.NewRequest("GET", "/login-page", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.True(t, strings.HasPrefix(body["login"].(string), "/login"))
}
