// Package devserver is an in-memory stand-in for the remote organizer API.
// It speaks the same envelope and routes, so the client and the CLI can be
// exercised without the real backend.
package devserver

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/infrastructure/logger"
)

// Server holds the in-memory state behind the mock API
type Server struct {
	echo   *echo.Echo
	logger *logger.Logger

	mu         sync.Mutex
	categories []*entities.Category
	items      []*entities.SupermarketItem
	events     []*entities.CalendarEvent
	notes      []*entities.Note
	debts      []*entities.DebtEntry
	devices    []*entities.Device
}

// New creates a mock API server mounted under basePath
func New(basePath string, appLogger *logger.Logger) *Server {
	s := &Server{
		echo:   echo.New(),
		logger: appLogger.WithComponent("devserver"),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())

	g := s.echo.Group(basePath)

	g.GET("/categories", s.listCategories)
	g.POST("/categories", s.createCategory)
	g.DELETE("/categories/:id", s.deleteCategory)
	g.POST("/categories/:id/tasks", s.createTask)
	g.PATCH("/categories/:id/tasks/:taskId", s.updateTask)
	g.DELETE("/categories/:id/tasks/:taskId", s.deleteTask)
	g.POST("/categories/:id/tasks/reorder", s.reorderTasks)

	g.GET("/supermarket", s.listItems)
	g.POST("/supermarket", s.createItem)
	g.PATCH("/supermarket/:id", s.updateItem)
	g.DELETE("/supermarket/:id", s.deleteItem)

	g.GET("/calendar", s.listEvents)
	g.POST("/calendar", s.createEvent)
	g.PUT("/calendar/:id", s.updateEvent)
	g.DELETE("/calendar/:id", s.deleteEvent)

	g.GET("/notes", s.listNotes)
	g.POST("/notes", s.createNote)
	g.PATCH("/notes/:id", s.updateNote)
	g.DELETE("/notes/:id", s.deleteNote)

	g.GET("/debts", s.listDebts)
	g.POST("/debts", s.createDebt)
	g.PATCH("/debts/:id", s.updateDebt)
	g.DELETE("/debts/:id", s.deleteDebt)

	g.POST("/notifications/register", s.registerDevice)
	g.POST("/notifications/broadcast", s.broadcast)
	g.POST("/notifications/send-message", s.sendMessage)
	g.GET("/notifications/devices", s.listDevices)
	g.PATCH("/notifications/device/:id", s.renameDevice)

	return s
}

// Handler exposes the HTTP handler, for tests with httptest
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving on addr until the listener fails or is closed
func (s *Server) Start(addr string) error {
	s.logger.Infow("mock api listening", "addr", addr)
	return s.echo.Start(addr)
}

// Close shuts the listener down
func (s *Server) Close() error { return s.echo.Close() }

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "data": data})
}

func created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, map[string]any{"status": "success", "data": data})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]any{"status": "error", "message": message})
}

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }

// --- categories ---

func (s *Server) listCategories(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	includeTasks := c.QueryParam("includeTasks") == "true"
	out := make([]entities.Category, 0, len(s.categories))
	for _, category := range s.categories {
		clone := category.Clone()
		clone.TasksCount = len(category.Tasks)
		if !includeTasks {
			clone.Tasks = nil
		}
		out = append(out, clone)
	}
	return ok(c, out)
}

func (s *Server) createCategory(c echo.Context) error {
	var body struct {
		Data struct {
			Title string  `json:"title"`
			Color *string `json:"color"`
		} `json:"data"`
	}
	if err := c.Bind(&body); err != nil || body.Data.Title == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}

	category := &entities.Category{
		ID:        uuid.NewString(),
		Title:     body.Data.Title,
		Color:     body.Data.Color,
		CreatedAt: nowISO(),
	}

	s.mu.Lock()
	s.categories = append(s.categories, category)
	s.mu.Unlock()

	return created(c, category.Clone())
}

func (s *Server) deleteCategory(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	for i, category := range s.categories {
		if category.ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return ok(c, map[string]any{"deleted": id})
		}
	}
	return fail(c, http.StatusNotFound, "category not found")
}

func (s *Server) createTask(c echo.Context) error {
	var body struct {
		Data struct {
			Title       string  `json:"title"`
			Description string  `json:"description"`
			DueDate     *string `json:"dueDate"`
		} `json:"data"`
	}
	if err := c.Bind(&body); err != nil || body.Data.Title == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	category := s.findCategory(c.Param("id"))
	if category == nil {
		return fail(c, http.StatusNotFound, "category not found")
	}

	next := 0
	for _, task := range category.Tasks {
		if task.Order != nil && *task.Order >= next {
			next = *task.Order + 1
		}
	}
	task := entities.Task{
		ID:          uuid.NewString(),
		Title:       body.Data.Title,
		Description: body.Data.Description,
		DueDate:     body.Data.DueDate,
		Status:      entities.TaskStatusPendiente,
		Order:       &next,
		CreatedAt:   nowISO(),
	}
	category.Tasks = append(category.Tasks, task)
	return created(c, task.Clone())
}

func (s *Server) updateTask(c echo.Context) error {
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	category := s.findCategory(c.Param("id"))
	if category == nil {
		return fail(c, http.StatusNotFound, "category not found")
	}
	for i := range category.Tasks {
		task := &category.Tasks[i]
		if task.ID != c.Param("taskId") {
			continue
		}
		if v, ok := body.Data["title"].(string); ok {
			task.Title = v
		}
		if v, ok := body.Data["description"].(string); ok {
			task.Description = v
		}
		if v, ok := body.Data["status"].(string); ok {
			task.Status = entities.TaskStatus(v)
		}
		if v, ok := body.Data["dueDate"].(string); ok {
			task.DueDate = &v
		}
		task.UpdatedAt = nowISO()
		return ok(c, task.Clone())
	}
	return fail(c, http.StatusNotFound, "task not found")
}

func (s *Server) deleteTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	category := s.findCategory(c.Param("id"))
	if category == nil {
		return fail(c, http.StatusNotFound, "category not found")
	}
	for i, task := range category.Tasks {
		if task.ID == c.Param("taskId") {
			category.Tasks = append(category.Tasks[:i], category.Tasks[i+1:]...)
			return ok(c, map[string]any{"deleted": task.ID})
		}
	}
	return fail(c, http.StatusNotFound, "task not found")
}

func (s *Server) reorderTasks(c echo.Context) error {
	var body struct {
		Data []entities.TaskOrderRef `json:"data"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	category := s.findCategory(c.Param("id"))
	if category == nil {
		return fail(c, http.StatusNotFound, "category not found")
	}

	orders := make(map[string]int, len(body.Data))
	for _, ref := range body.Data {
		orders[ref.ID] = ref.Order
	}
	for i := range category.Tasks {
		if order, found := orders[category.Tasks[i].ID]; found {
			value := order
			category.Tasks[i].Order = &value
		}
	}
	sort.SliceStable(category.Tasks, func(i, j int) bool {
		a, b := category.Tasks[i].Order, category.Tasks[j].Order
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return *a < *b
	})
	return ok(c, map[string]any{"reordered": len(body.Data)})
}

func (s *Server) findCategory(id string) *entities.Category {
	for _, category := range s.categories {
		if category.ID == id {
			return category
		}
	}
	return nil
}

// --- supermarket ---

func (s *Server) listItems(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.SupermarketItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item.Clone())
	}
	stats := entities.SupermarketStats{Total: len(items)}
	for _, item := range items {
		if item.Checked {
			stats.Checked++
		} else {
			stats.Pending++
		}
		if item.Price != nil {
			stats.EstimatedTotal += *item.Price * item.Quantity
		}
	}
	return ok(c, map[string]any{"items": items, "stats": stats})
}

func (s *Server) createItem(c echo.Context) error {
	var body struct {
		Data entities.SupermarketItem `json:"data"`
	}
	if err := c.Bind(&body); err != nil || body.Data.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}

	item := body.Data
	item.ID = uuid.NewString()
	item.CreatedAt = nowISO()
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Unit == "" {
		item.Unit = "pz"
	}
	if item.Priority < 1 || item.Priority > 3 {
		item.Priority = 2
	}

	s.mu.Lock()
	s.items = append(s.items, &item)
	s.mu.Unlock()

	return created(c, item.Clone())
}

func (s *Server) updateItem(c echo.Context) error {
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID != c.Param("id") {
			continue
		}
		if v, ok := body.Data["name"].(string); ok {
			item.Name = v
		}
		if v, ok := body.Data["checked"].(bool); ok {
			item.Checked = v
		}
		if v, ok := body.Data["quantity"].(float64); ok {
			item.Quantity = v
		}
		if v, ok := body.Data["price"].(float64); ok {
			item.Price = &v
		}
		if v, ok := body.Data["priority"].(float64); ok {
			item.Priority = int(v)
		}
		item.UpdatedAt = nowISO()
		return ok(c, item.Clone())
	}
	return fail(c, http.StatusNotFound, "item not found")
}

func (s *Server) deleteItem(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == c.Param("id") {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return ok(c, map[string]any{"deleted": item.ID})
		}
	}
	return fail(c, http.StatusNotFound, "item not found")
}

// --- calendar ---

func (s *Server) listEvents(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]entities.CalendarEvent, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, *event)
	}
	return ok(c, events)
}

func (s *Server) createEvent(c echo.Context) error {
	var body struct {
		Data entities.CalendarEvent `json:"data"`
	}
	if err := c.Bind(&body); err != nil || body.Data.Title == "" || body.Data.Date == "" {
		return fail(c, http.StatusBadRequest, "title and date are required")
	}

	event := body.Data
	event.ID = uuid.NewString()
	event.CreatedAt = nowISO()

	s.mu.Lock()
	s.events = append(s.events, &event)
	s.mu.Unlock()

	return created(c, event)
}

func (s *Server) updateEvent(c echo.Context) error {
	var body struct {
		Data entities.CalendarEvent `json:"data"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range s.events {
		if event.ID != c.Param("id") {
			continue
		}
		event.Title = body.Data.Title
		event.Description = body.Data.Description
		event.Date = body.Data.Date
		event.StartTime = body.Data.StartTime
		event.NotifyBeforeMinutes = body.Data.NotifyBeforeMinutes
		event.UpdatedAt = nowISO()
		return ok(c, *event)
	}
	return fail(c, http.StatusNotFound, "event not found")
}

func (s *Server) deleteEvent(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, event := range s.events {
		if event.ID == c.Param("id") {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return ok(c, map[string]any{"deleted": event.ID})
		}
	}
	return fail(c, http.StatusNotFound, "event not found")
}

// --- notes ---

func (s *Server) listNotes(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := make([]entities.Note, 0, len(s.notes))
	for _, note := range s.notes {
		notes = append(notes, *note)
	}
	return ok(c, notes)
}

func (s *Server) createNote(c echo.Context) error {
	var body struct {
		Data entities.Note `json:"data"`
	}
	if err := c.Bind(&body); err != nil || body.Data.Title == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}

	note := body.Data
	note.ID = uuid.NewString()
	note.CreatedAt = nowISO()
	if note.IsManzana {
		note.Type = entities.NoteTypeManzana
	} else if note.Type == "" {
		note.Type = entities.NoteTypeNormal
	}

	s.mu.Lock()
	s.notes = append(s.notes, &note)
	s.mu.Unlock()

	return created(c, note)
}

func (s *Server) updateNote(c echo.Context) error {
	var body struct {
		Data entities.Note `json:"data"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, note := range s.notes {
		if note.ID != c.Param("id") {
			continue
		}
		note.Title = body.Data.Title
		note.Content = body.Data.Content
		note.IsManzana = body.Data.IsManzana
		if note.IsManzana {
			note.Type = entities.NoteTypeManzana
		} else {
			note.Type = entities.NoteTypeNormal
		}
		note.UpdatedAt = nowISO()
		return ok(c, *note)
	}
	return fail(c, http.StatusNotFound, "note not found")
}

func (s *Server) deleteNote(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, note := range s.notes {
		if note.ID == c.Param("id") {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return ok(c, map[string]any{"deleted": note.ID})
		}
	}
	return fail(c, http.StatusNotFound, "note not found")
}

// --- debts ---

func (s *Server) listDebts(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	debts := make([]entities.DebtEntry, 0, len(s.debts))
	for _, entry := range s.debts {
		debts = append(debts, *entry)
	}
	return ok(c, debts)
}

func (s *Server) createDebt(c echo.Context) error {
	var body struct {
		Data entities.DebtEntry `json:"data"`
	}
	if err := c.Bind(&body); err != nil || body.Data.Title == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}

	entry := body.Data
	entry.ID = uuid.NewString()
	entry.CreatedAt = nowISO()
	if entry.Type != entities.DebtTypeAbono {
		entry.Type = entities.DebtTypeDeuda
	}
	if entry.Date == "" {
		entry.Date = time.Now().Format("2006-01-02")
	}

	s.mu.Lock()
	s.debts = append(s.debts, &entry)
	s.mu.Unlock()

	return created(c, entry)
}

func (s *Server) updateDebt(c echo.Context) error {
	var body struct {
		Data entities.DebtEntry `json:"data"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.debts {
		if entry.ID != c.Param("id") {
			continue
		}
		entry.Title = body.Data.Title
		entry.Amount = body.Data.Amount
		if body.Data.Type != "" {
			entry.Type = body.Data.Type
		}
		if body.Data.Date != "" {
			entry.Date = body.Data.Date
		}
		entry.UpdatedAt = nowISO()
		return ok(c, *entry)
	}
	return fail(c, http.StatusNotFound, "entry not found")
}

func (s *Server) deleteDebt(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.debts {
		if entry.ID == c.Param("id") {
			s.debts = append(s.debts[:i], s.debts[i+1:]...)
			return ok(c, map[string]any{"deleted": entry.ID})
		}
	}
	return fail(c, http.StatusNotFound, "entry not found")
}

// --- notifications ---

func (s *Server) registerDevice(c echo.Context) error {
	var req entities.Device
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return fail(c, http.StatusBadRequest, "token is required")
	}
	if req.DisplayName == "" {
		req.DisplayName = "Dispositivo"
	}

	s.mu.Lock()
	replaced := false
	for i, device := range s.devices {
		if device.DeviceID != "" && device.DeviceID == req.DeviceID {
			s.devices[i] = &req
			replaced = true
			break
		}
	}
	if !replaced {
		s.devices = append(s.devices, &req)
	}
	s.mu.Unlock()

	return ok(c, map[string]any{"displayName": req.DisplayName})
}

func (s *Server) broadcast(c echo.Context) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return fail(c, http.StatusBadRequest, "message is required")
	}

	s.mu.Lock()
	count := len(s.devices)
	s.mu.Unlock()

	s.logger.Infow("broadcast delivered", "devices", count)
	return ok(c, map[string]any{"delivered": count})
}

func (s *Server) sendMessage(c echo.Context) error {
	var req struct {
		Message     string `json:"message"`
		TargetToken string `json:"targetToken"`
	}
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return fail(c, http.StatusBadRequest, "message is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, device := range s.devices {
		if device.Token == req.TargetToken {
			return ok(c, map[string]any{"delivered": 1})
		}
	}
	return fail(c, http.StatusNotFound, "target device not registered")
}

func (s *Server) listDevices(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	devices := make([]entities.Device, 0, len(s.devices))
	for _, device := range s.devices {
		devices = append(devices, *device)
	}
	return ok(c, devices)
}

func (s *Server) renameDevice(c echo.Context) error {
	var req struct {
		DisplayName string `json:"displayName"`
	}
	if err := c.Bind(&req); err != nil || req.DisplayName == "" {
		return fail(c, http.StatusBadRequest, "displayName is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, device := range s.devices {
		if device.DeviceID == c.Param("id") || device.Token == c.Param("id") {
			device.DisplayName = req.DisplayName
			return ok(c, *device)
		}
	}
	return fail(c, http.StatusNotFound, "device not found")
}
