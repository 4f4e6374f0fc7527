package website

import (
	"net/http"

	"git.mbbs.network/mbbs/mbbs/src/auth"
	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/oops"
)

func (s *websiteRoutes) Login(c *RequestContext) ResponseData {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := c.DecodeJSON(&input)
	if err != nil || input.Username == "" || input.Password == "" {
		return c.RejectRequest(http.StatusBadRequest, "you must provide a username and password")
	}

	user, err := db.QueryOne[models.User](c, c.Conn,
		`
		SELECT $columns
		FROM users
		WHERE LOWER(username) = LOWER($1)
		`,
		input.Username,
	)
	if err != nil {
		if err == db.NotFound {
			return c.RejectRequest(http.StatusUnauthorized, "wrong username or password")
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to look up user"))
	}

	hashed, err := auth.ParsePasswordString(user.Password)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "user %d has a corrupt password hash", user.ID))
	}

	ok, err := auth.CheckPassword(input.Password, hashed)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to check password"))
	}
	if !ok {
		return c.RejectRequest(http.StatusUnauthorized, "wrong username or password")
	}

	switch user.Status {
	case models.UserStatusDisabled:
		return c.RejectRequest(http.StatusForbidden, "this account is disabled")
	case models.UserStatusChecking:
		return c.RejectRequest(http.StatusForbidden, "this account is awaiting review")
	}

	// Issue a token on first login.
	if user.Token == "" {
		user.Token = auth.NewToken()
		_, err = c.Conn.Exec(c,
			`UPDATE users SET token = $1 WHERE id = $2`,
			user.Token, user.ID,
		)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to store login token"))
		}
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"token": user.Token,
		"user":  user.View(),
	})
	return res
}
