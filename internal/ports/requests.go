package ports

// CreateCategoryRequest is the payload for creating a category
type CreateCategoryRequest struct {
	Title string  `json:"title" validate:"required,min=1,max=120"`
	Color *string `json:"color,omitempty"`
}

// CreateTaskRequest is the payload for adding a task to a category
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// UpdateTaskRequest is the payload for editing a task; nil fields are left
// untouched by the server
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// CreateEventRequest is the payload for creating or replacing a calendar event
type CreateEventRequest struct {
	Title               string `json:"title" validate:"required,min=1,max=200"`
	Description         string `json:"description,omitempty"`
	Date                string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime           string `json:"startTime,omitempty"`
	NotifyBeforeMinutes *int   `json:"notifyBeforeMinutes,omitempty"`
}

// CreateDebtEntryRequest is the payload for appending to the debt ledger
type CreateDebtEntryRequest struct {
	Title  string  `json:"title" validate:"required,min=1,max=200"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Type   string  `json:"type" validate:"omitempty,oneof=deuda abono"`
	Date   string  `json:"date,omitempty"`
	Notes  string  `json:"notes,omitempty"`
}

// CreateNoteRequest is the payload for creating a note
type CreateNoteRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=200"`
	Content   string `json:"content,omitempty"`
	IsManzana bool   `json:"isManzana"`
}

// CreateSupermarketItemRequest is the payload for adding a shopping list item
type CreateSupermarketItemRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=200"`
	Quantity  float64  `json:"quantity" validate:"gte=0"`
	Unit      string   `json:"unit,omitempty"`
	Category  *string  `json:"category,omitempty"`
	Store     *string  `json:"store,omitempty"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Priority  int      `json:"priority" validate:"gte=1,lte=3"`
	Notes     *string  `json:"notes,omitempty"`
	Recurring string   `json:"recurring,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Checked   bool     `json:"checked"`
}

// RegisterDeviceRequest is the payload for push-token registration
type RegisterDeviceRequest struct {
	Token       string `json:"token" validate:"required"`
	Platform    string `json:"platform" validate:"required,oneof=android ios"`
	DeviceID    string `json:"deviceId"`
	AppVersion  string `json:"appVersion,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// SendMessageRequest is the payload for the push chat
type SendMessageRequest struct {
	Message     string `json:"message" validate:"required,min=1,max=500"`
	SenderToken string `json:"senderToken,omitempty"`
	TargetToken string `json:"targetToken,omitempty"`
}
