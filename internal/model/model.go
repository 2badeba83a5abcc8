// Package model defines the storefront records managed by the admin store and the records service.
package model

import (
	"slices"
	"strings"
	"time"
)

// Collection names shared by the cache keys, the remote contract and the store.
const (
	CollectionGames        = "games"
	CollectionOrders       = "orders"
	CollectionFlashSales   = "flashsales"
	CollectionTestimonials = "testimonials"
	CollectionFAQs         = "faqs"
	CollectionUsers        = "users"
)

// RemoteCollections lists the collections served by the records service.
// Users are never synced remotely.
var RemoteCollections = []string{
	CollectionGames,
	CollectionOrders,
	CollectionFlashSales,
	CollectionTestimonials,
	CollectionFAQs,
}

// IsRemoteCollection reports whether name is served by the records service.
func IsRemoteCollection(name string) bool {
	for _, c := range RemoteCollections {
		if c == name {
			return true
		}
	}
	return false
}

// LocalIDPrefix marks identifiers minted on the client while the remote was unreachable.
const LocalIDPrefix = "local-"

// IsLocalID reports whether id was generated locally and is unknown to the remote.
func IsLocalID(id string) bool { return strings.HasPrefix(id, LocalIDPrefix) }

// CreationStamper is implemented by records that carry a creation time
// defaulted by whoever stores them first.
type CreationStamper interface {
	StampCreated(now time.Time)
}

// Meta carries identity and concurrency metadata common to every record.
type Meta struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version,omitempty"`   // remote version, 0 for never-synced records
	UpdatedAt time.Time `json:"updatedAt,omitzero"` // last remote write
}

// Ref exposes the metadata of the embedding record.
func (m *Meta) Ref() *Meta { return m }

// Package is a purchasable top-up tier of a game.
type Package struct {
	ID      string `json:"id"`
	Amount  string `json:"amount"`
	Bonus   string `json:"bonus,omitempty"`
	Price   int64  `json:"price"`
	Popular bool   `json:"popular,omitempty"`
}

// Game is a catalog item.
type Game struct {
	Meta
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Image       string    `json:"image,omitempty"`
	Rating      string    `json:"rating,omitempty"`
	Players     string    `json:"players,omitempty"`
	Popular     bool      `json:"popular,omitempty"`
	Trending    bool      `json:"trending,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Packages    []Package `json:"packages,omitempty"`
}

// Label names the record in activity messages.
func (g *Game) Label() string { return g.Title }

// Clone returns a copy that shares no slices with g.
func (g *Game) Clone() Game {
	c := *g
	c.Tags = slices.Clone(g.Tags)
	c.Packages = slices.Clone(g.Packages)
	return c
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
// Staying in the same status is always allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	switch s {
	case OrderPending:
		return next == OrderPaid || next == OrderCancelled
	case OrderPaid:
		return next == OrderCancelled
	}
	return false
}

// OrderItem is one line of an order summary.
type OrderItem struct {
	GameID    string `json:"gameId,omitempty"`
	PackageID string `json:"packageId,omitempty"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// Order is a customer purchase.
type Order struct {
	Meta
	UserID        string      `json:"userId,omitempty"`
	UserName      string      `json:"userName,omitempty"`
	Items         []OrderItem `json:"items,omitempty"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	Total         int64       `json:"total"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt,omitzero"`
}

// Label names the record in activity messages.
func (o *Order) Label() string { return "#" + o.ID }

// StampCreated sets CreatedAt to now unless it is already set.
func (o *Order) StampCreated(now time.Time) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
}

// Clone returns a copy that shares no slices with o.
func (o *Order) Clone() Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	return c
}

// Units is the number of sold units. An order without items, or a line without
// a quantity, counts as one.
func (o *Order) Units() int {
	if len(o.Items) == 0 {
		return 1
	}
	n := 0
	for _, it := range o.Items {
		n += max(it.Quantity, 1)
	}
	return n
}

// FlashSale is a time-boxed promotion over a set of games.
type FlashSale struct {
	Meta
	Name      string    `json:"name"`
	Discount  int       `json:"discount"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	GameIDs   []string  `json:"gameIds,omitempty"`
}

// Label names the record in activity messages.
func (f *FlashSale) Label() string { return f.Name }

// Clone returns a copy that shares no slices with f.
func (f *FlashSale) Clone() FlashSale {
	c := *f
	c.GameIDs = slices.Clone(f.GameIDs)
	return c
}

// Testimonial is a customer review shown on the storefront.
type Testimonial struct {
	Meta
	Name    string `json:"name"`
	Avatar  string `json:"avatar,omitempty"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Game    string `json:"game,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Label names the record in activity messages.
func (t *Testimonial) Label() string { return t.Name }

// Clone returns a copy of t.
func (t *Testimonial) Clone() Testimonial { return *t }

// FAQ is a question/answer pair.
type FAQ struct {
	Meta
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Label names the record in activity messages.
func (f *FAQ) Label() string { return f.Question }

// Clone returns a copy of f.
func (f *FAQ) Clone() FAQ { return *f }

// Role is an account permission level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// User is a storefront account as seen by administrators. Users are kept locally only.
type User struct {
	Meta
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	OrderCount  int       `json:"orderCount,omitempty"`
	TotalSpent  int64     `json:"totalSpent,omitempty"`
	LastActive  time.Time `json:"lastActive,omitzero"`
}

// Label names the record in activity messages.
func (u *User) Label() string { return u.Name }

// Clone returns a copy of u.
func (u *User) Clone() User { return *u }

// ActivityEvent is one entry of the administrative activity feed.
type ActivityEvent struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Notification is an operator-facing alert.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}
