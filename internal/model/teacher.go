package model

// Teacher is an authenticated teacher bound to the class they run.
type Teacher struct {
	Login   string `json:"login"`
	ClassID string `json:"class_id"`
}

// TeacherLoginRequest is the payload for teacher authentication.
type TeacherLoginRequest struct {
	Login    string `json:"login" binding:"required,notblank,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// TeacherLoginResponse is returned after successful teacher login.
type TeacherLoginResponse struct {
	Token   string  `json:"token"`
	Teacher Teacher `json:"teacher"`
}
