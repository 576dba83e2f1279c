package api

import "strings"

// Routes builds the URL for every resource family the core consumes.
type Routes struct {
	root string
}

// NewRoutes combines the base URL and path prefix into the API root.
// The base path is appended once: a base URL that already ends with it is
// left alone.
func NewRoutes(baseURL, basePath string) Routes {
	base := strings.TrimRight(baseURL, "/")
	path := normalizeBasePath(basePath)
	if path == "" {
		return Routes{root: base}
	}
	if base == "" {
		return Routes{root: path}
	}
	if strings.HasSuffix(base, path) {
		return Routes{root: base}
	}
	return Routes{root: base + path}
}

func normalizeBasePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "/" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// Root returns the resolved API root
func (r Routes) Root() string { return r.root }

// Configured reports whether a base URL was resolved at all
func (r Routes) Configured() bool { return r.root != "" }

// Categories returns the categories collection URL, query included verbatim
func (r Routes) Categories(query string) string { return r.root + "/categories" + query }

// Category returns the URL for one category
func (r Routes) Category(categoryID string) string { return r.root + "/categories/" + categoryID }

// CategoryTasks returns the nested tasks collection URL
func (r Routes) CategoryTasks(categoryID string) string {
	return r.root + "/categories/" + categoryID + "/tasks"
}

// CategoryTask returns the URL for one nested task
func (r Routes) CategoryTask(categoryID, taskID string) string {
	return r.root + "/categories/" + categoryID + "/tasks/" + taskID
}

// CategoryTasksReorder returns the batched reorder URL for a category
func (r Routes) CategoryTasksReorder(categoryID string) string {
	return r.root + "/categories/" + categoryID + "/tasks/reorder"
}

// Supermarket returns the shopping list collection URL
func (r Routes) Supermarket(query string) string { return r.root + "/supermarket" + query }

// SupermarketItem returns the URL for one shopping list item
func (r Routes) SupermarketItem(itemID string) string { return r.root + "/supermarket/" + itemID }

// Calendar returns the calendar collection URL
func (r Routes) Calendar(query string) string { return r.root + "/calendar" + query }

// CalendarEvent returns the URL for one event
func (r Routes) CalendarEvent(eventID string) string { return r.root + "/calendar/" + eventID }

// Notes returns the notes collection URL
func (r Routes) Notes(query string) string { return r.root + "/notes" + query }

// Note returns the URL for one note
func (r Routes) Note(noteID string) string { return r.root + "/notes/" + noteID }

// Debts returns the debt ledger collection URL
func (r Routes) Debts(query string) string { return r.root + "/debts" + query }

// Debt returns the URL for one ledger entry
func (r Routes) Debt(entryID string) string { return r.root + "/debts/" + entryID }

// NotificationsRegister returns the device registration URL
func (r Routes) NotificationsRegister() string { return r.root + "/notifications/register" }

// NotificationsBroadcast returns the broadcast URL
func (r Routes) NotificationsBroadcast() string { return r.root + "/notifications/broadcast" }

// NotificationsSendMessage returns the direct message URL
func (r Routes) NotificationsSendMessage() string { return r.root + "/notifications/send-message" }

// NotificationsDevices returns the registered devices listing URL
func (r Routes) NotificationsDevices() string { return r.root + "/notifications/devices" }

// NotificationsDevice returns the URL for one registered device
func (r Routes) NotificationsDevice(deviceID string) string {
	return r.root + "/notifications/device/" + deviceID
}
