package devserver

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/session"
)

var (
	errUserNotFound = errors.New("User not found")
	errEmailTaken   = errors.New("Email already registered")
	errOldPassword  = errors.New("Old password is incorrect")
	errSKUTaken     = errors.New("A product with this SKU already exists")
)

type account struct {
	user     api.User
	passHash []byte
}

// Store is the dev server's in-memory data. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	cost     int
	users    map[int64]*account
	products map[int64]api.Product
	orders   map[int64]api.Order
	nextUser int64
	nextProd int64
}

func NewStore(bcryptCost int) *Store {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		cost:     bcryptCost,
		users:    make(map[int64]*account),
		products: make(map[int64]api.Product),
		orders:   make(map[int64]api.Order),
		nextUser: 1,
		nextProd: 1,
	}
}

// AddUser creates an account with a hashed password.
func (s *Store) AddUser(fullName, email string, role session.Role, password string) (api.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return api.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailInUse(email, 0) {
		return api.User{}, errEmailTaken
	}
	u := api.User{
		ID:        s.nextUser,
		FullName:  fullName,
		Email:     email,
		Role:      role,
		CreatedAt: api.Timestamp{Time: time.Now().UTC().Truncate(time.Second)},
	}
	s.nextUser++
	s.users[u.ID] = &account{user: u, passHash: hash}
	return u, nil
}

func (s *Store) emailInUse(email string, except int64) bool {
	for id, a := range s.users {
		if id != except && strings.EqualFold(a.user.Email, email) {
			return true
		}
	}
	return false
}

// Users lists accounts by id.
func (s *Store) Users() []api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.User, 0, len(s.users))
	for _, a := range s.users {
		out = append(out, a.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) UserByEmail(email string) (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.users {
		if strings.EqualFold(a.user.Email, email) {
			return a.user, true
		}
	}
	return api.User{}, false
}

// userPatch mirrors the PATCH body; nil fields are left alone.
type userPatch struct {
	FullName *string       `json:"full_name"`
	Email    *string       `json:"email"`
	Role     *session.Role `json:"role"`
}

func (s *Store) UpdateUser(id int64, p userPatch) (api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return api.User{}, errUserNotFound
	}
	if p.Email != nil && s.emailInUse(*p.Email, id) {
		return api.User{}, errEmailTaken
	}
	u := a.user
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	a.user = u
	return u, nil
}

func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return errUserNotFound
	}
	delete(s.users, id)
	return nil
}

// ChangePassword replaces the password of id after checking the old one.
func (s *Store) ChangePassword(id int64, oldPassword, newPassword string) error {
	s.mu.RLock()
	a, ok := s.users[id]
	var hash []byte
	if ok {
		hash = a.passHash
	}
	s.mu.RUnlock()
	if !ok {
		return errUserNotFound
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(oldPassword)) != nil {
		return errOldPassword
	}
	next, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.users[id]; ok {
		a.passHash = next
	}
	return nil
}

// CheckPassword reports whether password is the current one for id.
func (s *Store) CheckPassword(id int64, password string) bool {
	s.mu.RLock()
	a, ok := s.users[id]
	s.mu.RUnlock()
	return ok && bcrypt.CompareHashAndPassword(a.passHash, []byte(password)) == nil
}

func (s *Store) Products() []api.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) AddProduct(in api.ProductInput) (api.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if strings.EqualFold(p.SKU, in.SKU) {
			return api.Product{}, errSKUTaken
		}
	}
	p := api.Product{
		ID:           s.nextProd,
		SKU:          in.SKU,
		Name:         in.Name,
		Category:     in.Category,
		Description:  in.Description,
		CurrentStock: in.CurrentStock,
		ReorderLevel: in.ReorderLevel,
		UnitPrice:    in.UnitPrice,
		BinLocation:  in.BinLocation,
		SupplierID:   in.SupplierID,
	}
	s.nextProd++
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) Orders() []api.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) AddOrder(o api.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

func fmtID(id int64) string { return strconv.FormatInt(id, 10) }
