package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accountdomain "github.com/smallbiznis/faktur/internal/account/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	BusinessName    string `json:"business_name"`
	Address         string `json:"address"`
	BankName        string `json:"bank_name"`
	BankAccountName string `json:"bank_account_name"`
	AccountNumber   string `json:"account_number"`
	BranchCode      string `json:"branch_code"`
	Onboarded       bool   `json:"onboarded"`
}

func toUserResponse(u accountdomain.User) userResponse {
	return userResponse{
		ID:              u.ID.String(),
		Email:           u.Email,
		BusinessName:    u.BusinessName,
		Address:         u.Address,
		BankName:        u.BankName,
		BankAccountName: u.BankAccountName,
		AccountNumber:   u.AccountNumber,
		BranchCode:      u.BranchCode,
		Onboarded:       u.Onboarded,
	}
}

func (s *Server) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.accountSvc.Signup(c.Request.Context(), accountdomain.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)
	c.JSON(http.StatusCreated, gin.H{"data": toUserResponse(result.User)})
}

func (s *Server) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.accountSvc.Login(c.Request.Context(), accountdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"data": toUserResponse(result.User)})
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.accountSvc.Logout(c.Request.Context(), token); err != nil {
			AbortWithError(c, err)
			return
		}
	}
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	user, err := s.accountSvc.GetByID(c.Request.Context(), c.GetString(contextUserIDKey))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toUserResponse(user)})
}

func (s *Server) Onboard(c *gin.Context) {
	var req accountdomain.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.accountSvc.Onboard(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toUserResponse(user)})
}
