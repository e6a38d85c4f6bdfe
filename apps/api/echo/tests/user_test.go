package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gradahq/grada/core/user"
)

func Test_userApi_register(t *testing.T) {
	tests := []httpTest{
		{
			name:     "valid registration",
			body:     marchallObj(t, map[string]string{"full_name": "Jordan Lee", "username": "jordanlee", "password": "LeP@ssword123", "password_confirm": "LeP@ssword123"}),
			wantCode: http.StatusCreated,
		},
		{
			name:     "username taken",
			body:     marchallObj(t, map[string]string{"full_name": "Impostor", "username": "jordanlee", "password": "ImP@ssword123", "password_confirm": "ImP@ssword123"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "weak password",
			body:     marchallObj(t, map[string]string{"full_name": "Casey", "username": "caseydoe", "password": "password", "password_confirm": "password"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "password mismatch",
			body:     marchallObj(t, map[string]string{"full_name": "Casey", "username": "caseydoe", "password": "CaP@ssword123", "password_confirm": "Other123!"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "username or email required",
			body:     marchallObj(t, map[string]string{"full_name": "Casey", "password": "CaP@ssword123", "password_confirm": "CaP@ssword123"}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if usr.ID == "" || !usr.IsActive || usr.OnboardingCompleted {
					t.Errorf("user = %+v; want new active user awaiting onboarding", usr)
				}
			}
		})
	}
}

func Test_userApi_login(t *testing.T) {
	usr := createUser(t, "Login User", "loginuser", "login@uni.edu", "LeP@ssword123", true)

	deactivated := createUser(t, "Gone User", "goneuser", "", "LeP@ssword123", true)
	deactivated.IsActive = false
	if _, err := usrRepo.UpdateUser(testCtx(), deactivated); err != nil {
		t.Fatalf("UpdateUser(): %v", err)
	}

	tests := []httpTest{
		{
			name:     "valid credentials",
			body:     marchallObj(t, map[string]string{"username": "loginuser", "password": "LeP@ssword123"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "login by email",
			body:     marchallObj(t, map[string]string{"username": "login@uni.edu", "password": "LeP@ssword123"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, map[string]string{"username": "loginuser", "password": "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user",
			body:     marchallObj(t, map[string]string{"username": "whodis", "password": "LeP@ssword123"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     marchallObj(t, map[string]string{"username": "goneuser", "password": "LeP@ssword123"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "missing fields",
			body:     marchallObj(t, map[string]string{"username": "loginuser"}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusOK {
				var res struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if res.Token == "" {
					t.Error("token is empty")
				}
			}
		})
	}

	t.Run("login updates lastLogin", func(t *testing.T) {
		fresh, err := usrRepo.GetUserByID(testCtx(), usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID(): %v", err)
		}
		if fresh.LastLogin.IsZero() {
			t.Error("lastLogin not set")
		}
	})
}

func Test_userApi_me(t *testing.T) {
	usr := createUser(t, "Me User", "meuser01", "me@uni.edu", "", true)
	token := getToken(t, usr)

	t.Run("auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("get me", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update profile", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"full_name":     "Me Renamed",
			"semester_term": user.TermSpring2026,
			"courses":       []map[string]string{{"name": "CS101", "color": user.ColorGreen}},
		})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.FullName != "Me Renamed" || got.SemesterTerm != user.TermSpring2026 {
			t.Errorf("user = %+v", got)
		}
		if got.GoalChangesCount != 0 {
			t.Errorf("goalChangesCount = %d; want 0 (goal untouched)", got.GoalChangesCount)
		}
	})

	t.Run("blank name rejected", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"full_name": "   "})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want 400; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid term rejected", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"semester_term": "fall-1999"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want 400; body %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_userApi_goalChangeLimit(t *testing.T) {
	usr := createUser(t, "Goal User", "goaluser", "", "", true)
	token := getToken(t, usr)

	goals := []string{"Goal one", "Goal two", "Goal three"}
	for _, goal := range goals {
		body := marchallObj(t, map[string]string{"semester_goal": goal})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
	}

	// budget exhausted
	body := marchallObj(t, map[string]string{"semester_goal": "Goal four"})
	req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %v; want 400; body %s", rec.Code, rec.Body.String())
	}
	fresh, err := usrRepo.GetUserByID(testCtx(), usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID(): %v", err)
	}
	if fresh.SemesterGoal != "Goal three" {
		t.Errorf("semesterGoal = %q; want %q", fresh.SemesterGoal, "Goal three")
	}
}

func Test_userApi_onboarding(t *testing.T) {
	t.Run("items blocked before onboarding", func(t *testing.T) {
		usr := createUser(t, "Fresh User", "freshusr", "", "", false)
		tt := httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "onboarding required"}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/items/dashboard", getToken(t, usr))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("complete onboarding", func(t *testing.T) {
		usr := createUser(t, "Fresh User", "freshus2", "fresh2@uni.edu", "", false)
		token := getToken(t, usr)

		body := marchallObj(t, map[string]interface{}{
			"semester_goal": "Finish strong",
			"semester_term": user.TermFall2025,
			"courses": []map[string]interface{}{
				{"name": "CS101", "color": user.ColorBlue, "class_times": []map[string]string{{"day": user.DayMonday, "start_time": "09:00", "end_time": "10:30"}}},
			},
			"full_name": "Fresh User",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/me/onboarding", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var res struct {
			User  user.User `json:"user"`
			Token string    `json:"token"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !res.User.OnboardingCompleted || res.Token == "" {
			t.Errorf("res = %+v; want onboarded user and fresh token", res)
		}

		// data routes open up with the new token
		req, rec = newAuthRequest(http.MethodGet, "/v1/items/dashboard", res.Token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want 200; body %s", rec.Code, rec.Body.String())
		}

		// completing twice is rejected
		req, rec = newAuthRequest(http.MethodPost, "/v1/users/me/onboarding", res.Token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want 400; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("goal over the caps", func(t *testing.T) {
		usr := createUser(t, "Fresh User", "freshus3", "", "", false)
		body := marchallObj(t, map[string]interface{}{
			"semester_goal": "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen",
			"full_name":     "Fresh User",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/me/onboarding", getToken(t, usr), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want 400; body %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	usr := createUser(t, "Refresh User", "refresher", "", "", true)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Token == "" {
		t.Error("token is empty")
	}
}
