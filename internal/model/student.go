package model

// Student is an authenticated student identity.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	ID       string `json:"id" binding:"required,notblank,max=32"`
	Password string `json:"password" binding:"required,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}
