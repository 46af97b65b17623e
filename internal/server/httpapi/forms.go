package httpapi

// RegisterForm carries a local signup request.
type RegisterForm struct {
	Name     string `form:"name" json:"name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Gender   string `form:"gender" json:"gender"`
	Language string `form:"language" json:"language"`
}

// LoginForm carries a local login request.
type LoginForm struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// SocialForm carries the provider token for google/facebook flows.
type SocialForm struct {
	Token string `form:"token" json:"token" binding:"required"`
}
