package model

// BookRequest is the payload for creating or replacing a catalog entry.
type BookRequest struct {
	ISBN            string `json:"isbn" validate:"omitempty,max=32"`
	Title           string `json:"title" validate:"required,max=255"`
	Author          string `json:"author" validate:"required,max=255"`
	Category        string `json:"category" validate:"required,max=100"`
	Publisher       string `json:"publisher" validate:"max=255"`
	PublicationYear int    `json:"publicationYear" validate:"gte=0,lte=9999"`
	Description     string `json:"description"`
	TotalCopies     int    `json:"totalCopies" validate:"gte=0,lte=100000"`
}

// CreatedResponse carries the identifier of a newly created resource.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// RegisterRequest is the payload for creating a member account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=255"`
	Phone    string `json:"phone" validate:"max=50"`
	Address  string `json:"address" validate:"max=500"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Member  Member `json:"member"`
}

// ProfileRequest is the payload a member uses to edit their own profile.
type ProfileRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

// MemberUpdateRequest is the payload an admin uses to edit a member.
type MemberUpdateRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}
