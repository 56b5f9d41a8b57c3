package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"buymore_back_end/internal/models"

	"github.com/gocql/gocql"
	"gopkg.in/inf.v0"
)

// Scylla implementa Store sobre um único keyspace (scripts/scylladb_init.cql).
type Scylla struct {
	session *gocql.Session
}

func NewScylla(session *gocql.Session) *Scylla {
	return &Scylla{session: session}
}

func (s *Scylla) Close() { s.session.Close() }

func (s *Scylla) query(ctx context.Context, stmt string, args ...interface{}) *gocql.Query {
	return s.session.Query(stmt, args...).WithContext(ctx)
}

// =============================================
// PRODUTOS E CATEGORIAS
// =============================================

const productColumns = `product_id, name, description, price, image_url, unit, stock, category_id, created_at, updated_at`

func scanProduct(scan func(dest ...interface{}) bool) (models.Product, bool) {
	var p models.Product
	var price *inf.Dec
	ok := scan(&p.ID, &p.Name, &p.Description, &price, &p.ImageURL, &p.Unit, &p.Stock, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	p.Price = fromDec(price)
	return p, ok
}

func (s *Scylla) ListProducts(ctx context.Context) ([]models.Product, error) {
	iter := s.query(ctx, `SELECT `+productColumns+` FROM products`).Iter()
	var out []models.Product
	for {
		p, ok := scanProduct(iter.Scan)
		if !ok {
			break
		}
		out = append(out, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erro ao ler produtos: %w", err)
	}
	sortProducts(out)
	return out, nil
}

func (s *Scylla) GetProduct(ctx context.Context, id gocql.UUID) (models.Product, error) {
	var err error
	p, _ := scanProduct(func(dest ...interface{}) bool {
		err = s.query(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).Scan(dest...)
		return err == nil
	})
	if err != nil {
		return models.Product{}, wrapNotFound(err, "produto", id)
	}
	return p, nil
}

func (s *Scylla) SaveProduct(ctx context.Context, p *models.Product) error {
	now := time.Now()
	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
		p.CreatedAt = now
	} else {
		old, err := s.GetProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		p.CreatedAt = old.CreatedAt
	}
	p.UpdatedAt = now

	err := s.query(ctx, `INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, toDec(p.Price), p.ImageURL, p.Unit, p.Stock, p.CategoryID, p.CreatedAt, p.UpdatedAt).Exec()
	if err != nil {
		return fmt.Errorf("erro ao gravar produto: %w", err)
	}
	return nil
}

func (s *Scylla) DeleteProduct(ctx context.Context, id gocql.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.query(ctx, `DELETE FROM products WHERE product_id = ?`, id).Exec(); err != nil {
		return fmt.Errorf("erro ao remover produto: %w", err)
	}
	return nil
}

func (s *Scylla) ListCategories(ctx context.Context) ([]models.Category, error) {
	iter := s.query(ctx, `SELECT category_id, name, slug, type FROM categories`).Iter()
	var out []models.Category
	var c models.Category
	var typ string
	for iter.Scan(&c.ID, &c.Name, &c.Slug, &typ) {
		c.Type = models.CategoryType(typ)
		out = append(out, c)
		c = models.Category{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erro ao ler categorias: %w", err)
	}
	sortCategories(out)
	return out, nil
}

func (s *Scylla) SaveCategory(ctx context.Context, c *models.Category) error {
	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	} else {
		var name string
		if err := s.query(ctx, `SELECT name FROM categories WHERE category_id = ?`, c.ID).Scan(&name); err != nil {
			return wrapNotFound(err, "categoria", c.ID)
		}
	}
	err := s.query(ctx, `INSERT INTO categories (category_id, name, slug, type) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, string(c.Type)).Exec()
	if err != nil {
		return fmt.Errorf("erro ao gravar categoria: %w", err)
	}
	return nil
}

func (s *Scylla) DeleteCategory(ctx context.Context, id gocql.UUID) error {
	var name string
	if err := s.query(ctx, `SELECT name FROM categories WHERE category_id = ?`, id).Scan(&name); err != nil {
		return wrapNotFound(err, "categoria", id)
	}
	if err := s.query(ctx, `DELETE FROM categories WHERE category_id = ?`, id).Exec(); err != nil {
		return fmt.Errorf("erro ao remover categoria: %w", err)
	}
	return nil
}

// =============================================
// PROMOÇÕES
// =============================================

const promotionColumns = `promotion_id, kind, title, description, image_url, is_active, start_date, end_date, product_id, quantity, special_price, discount_percentage, created_at`

func scanPromotion(scan func(dest ...interface{}) bool) (models.Promotion, bool, error) {
	var (
		p                 models.Promotion
		kind              string
		start, end        time.Time
		productID         gocql.UUID
		quantity          int
		special, discount *inf.Dec
	)
	if !scan(&p.ID, &kind, &p.Title, &p.Description, &p.ImageURL, &p.IsActive, &start, &end, &productID, &quantity, &special, &discount, &p.CreatedAt) {
		return p, false, nil
	}
	p.StartDate = timePtr(start)
	p.EndDate = timePtr(end)

	offer, err := models.OfferFromColumns(kind, uuidPtr(productID), quantity, decPtr(special), decPtr(discount))
	if err != nil {
		return p, true, fmt.Errorf("promoção %s: %w", p.ID, err)
	}
	p.Offer = offer
	return p, true, nil
}

func (s *Scylla) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	iter := s.query(ctx, `SELECT `+promotionColumns+` FROM promotions`).Iter()
	var out []models.Promotion
	for {
		p, ok, err := scanPromotion(iter.Scan)
		if !ok {
			break
		}
		if err != nil {
			// linha antiga sem variante: ignorada
			continue
		}
		out = append(out, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erro ao ler promoções: %w", err)
	}
	sortPromotions(out)
	return out, nil
}

func (s *Scylla) GetPromotion(ctx context.Context, id gocql.UUID) (models.Promotion, error) {
	var qerr error
	p, _, err := scanPromotion(func(dest ...interface{}) bool {
		qerr = s.query(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE promotion_id = ?`, id).Scan(dest...)
		return qerr == nil
	})
	if qerr != nil {
		return models.Promotion{}, wrapNotFound(qerr, "promoção", id)
	}
	if err != nil {
		return models.Promotion{}, err
	}
	return p, nil
}

func (s *Scylla) SavePromotion(ctx context.Context, p *models.Promotion) error {
	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
		p.CreatedAt = time.Now()
	} else {
		old, err := s.GetPromotion(ctx, p.ID)
		if err != nil {
			return err
		}
		p.CreatedAt = old.CreatedAt
	}

	var (
		kind      string
		productID interface{}
		quantity  int
		special   interface{}
		discount  interface{}
	)
	switch o := p.Offer.(type) {
	case models.ProductBundle:
		kind = o.Kind()
		productID = optUUID(&o.ProductID)
		quantity = o.Quantity
		special = toDec(o.SpecialPrice)
	case models.PercentageDiscount:
		kind = o.Kind()
		discount = toDec(o.Percentage)
	default:
		return models.ErrUnknownOffer
	}

	err := s.query(ctx, `INSERT INTO promotions (`+promotionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, kind, p.Title, p.Description, p.ImageURL, p.IsActive, optTime(p.StartDate), optTime(p.EndDate),
		productID, quantity, special, discount, p.CreatedAt).Exec()
	if err != nil {
		return fmt.Errorf("erro ao gravar promoção: %w", err)
	}
	return nil
}

func (s *Scylla) DeletePromotion(ctx context.Context, id gocql.UUID) error {
	if _, err := s.GetPromotion(ctx, id); err != nil {
		return err
	}
	if err := s.query(ctx, `DELETE FROM promotions WHERE promotion_id = ?`, id).Exec(); err != nil {
		return fmt.Errorf("erro ao remover promoção: %w", err)
	}
	return nil
}

// =============================================
// PEDIDOS
// =============================================

const orderColumns = `order_id, customer_name, customer_email, customer_phone, customer_address, customer_complement, payment_method, order_type, scheduled_date, scheduled_time, total, status, created_at`

func scanOrder(scan func(dest ...interface{}) bool) (models.Order, bool) {
	var (
		o                    models.Order
		payment, typ, status string
		total                *inf.Dec
	)
	ok := scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerAddress, &o.CustomerComplement,
		&payment, &typ, &o.ScheduledDate, &o.ScheduledTime, &total, &status, &o.CreatedAt)
	o.PaymentMethod = models.PaymentMethod(payment)
	o.OrderType = models.OrderType(typ)
	o.Status = models.OrderStatus(status)
	o.Total = fromDec(total)
	return o, ok
}

func (s *Scylla) InsertOrder(ctx context.Context, o *models.Order) error {
	if o.ID == (gocql.UUID{}) {
		o.ID = gocql.TimeUUID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	err := s.query(ctx, `INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.CustomerAddress, o.CustomerComplement,
		string(o.PaymentMethod), string(o.OrderType), o.ScheduledDate, o.ScheduledTime, toDec(o.Total),
		string(o.Status), o.CreatedAt).Exec()
	if err != nil {
		return fmt.Errorf("erro ao gravar pedido: %w", err)
	}
	return nil
}

// InsertOrderItems grava os itens em um batch não logado; o cabeçalho já
// gravado não é desfeito se isto falhar.
func (s *Scylla) InsertOrderItems(ctx context.Context, orderID gocql.UUID, items []models.OrderItem) error {
	batch := s.session.NewBatch(gocql.UnloggedBatch).WithContext(ctx)
	for i := range items {
		it := &items[i]
		if it.ID == (gocql.UUID{}) {
			it.ID = gocql.TimeUUID()
		}
		it.OrderID = orderID
		batch.Query(`INSERT INTO order_items (order_id, item_id, product_id, promotion_id, name, quantity, price, ingredients) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			orderID, it.ID, it.ProductID, optUUID(it.PromotionID), it.Name, it.Quantity, toDec(it.Price), it.Ingredients)
	}
	if err := s.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("erro ao gravar itens do pedido %s: %w", orderID, err)
	}
	return nil
}

func (s *Scylla) listOrders(ctx context.Context, where string, args ...interface{}) ([]models.Order, error) {
	iter := s.query(ctx, `SELECT `+orderColumns+` FROM orders`+where, args...).Iter()
	var out []models.Order
	for {
		o, ok := scanOrder(iter.Scan)
		if !ok {
			break
		}
		out = append(out, o)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erro ao ler pedidos: %w", err)
	}
	sortOrders(out)
	return out, nil
}

func (s *Scylla) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, "")
}

func (s *Scylla) GetOrder(ctx context.Context, id gocql.UUID) (models.Order, error) {
	var err error
	o, _ := scanOrder(func(dest ...interface{}) bool {
		err = s.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, id).Scan(dest...)
		return err == nil
	})
	if err != nil {
		return models.Order{}, wrapNotFound(err, "pedido", id)
	}
	return o, nil
}

// Telefone e e-mail têm índice secundário; a ordenação é feita aqui.
func (s *Scylla) ListOrdersByPhone(ctx context.Context, phone string, limit int) ([]models.Order, error) {
	out, err := s.listOrders(ctx, ` WHERE customer_phone = ?`, phone)
	if err != nil {
		return nil, err
	}
	return limitOrders(out, limit), nil
}

func (s *Scylla) ListOrdersByEmail(ctx context.Context, email string) ([]models.Order, error) {
	return s.listOrders(ctx, ` WHERE customer_email = ?`, email)
}

func (s *Scylla) ListOrderItems(ctx context.Context, orderID gocql.UUID) ([]models.OrderItem, error) {
	iter := s.query(ctx, `SELECT order_id, item_id, product_id, promotion_id, name, quantity, price, ingredients FROM order_items WHERE order_id = ?`, orderID).Iter()
	var out []models.OrderItem
	for {
		var (
			it    models.OrderItem
			promo gocql.UUID
			price *inf.Dec
		)
		if !iter.Scan(&it.OrderID, &it.ID, &it.ProductID, &promo, &it.Name, &it.Quantity, &price, &it.Ingredients) {
			break
		}
		it.PromotionID = uuidPtr(promo)
		it.Price = fromDec(price)
		out = append(out, it)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erro ao ler itens do pedido %s: %w", orderID, err)
	}
	return out, nil
}

func (s *Scylla) UpdateOrderStatus(ctx context.Context, id gocql.UUID, status models.OrderStatus) error {
	if _, err := s.GetOrder(ctx, id); err != nil {
		return err
	}
	if err := s.query(ctx, `UPDATE orders SET status = ? WHERE order_id = ?`, string(status), id).Exec(); err != nil {
		return fmt.Errorf("erro ao atualizar status: %w", err)
	}
	return nil
}

// =============================================
// USUÁRIOS
// =============================================

// CreateUser reserva o e-mail com LWT antes de gravar usuário e perfil.
func (s *Scylla) CreateUser(ctx context.Context, u *models.User, p *models.Profile) error {
	if u.ID == (gocql.UUID{}) {
		u.ID = gocql.TimeUUID()
	}
	u.Email = strings.ToLower(u.Email)
	now := time.Now()
	u.CreatedAt = now

	applied, err := s.query(ctx, `INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`, u.Email, u.ID).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("erro ao reservar e-mail: %w", err)
	}
	if !applied {
		return fmt.Errorf("e-mail %s: %w", u.Email, ErrDuplicate)
	}

	if err := s.query(ctx, `INSERT INTO users (user_id, email, password, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.Password, u.CreatedAt).Exec(); err != nil {
		return fmt.Errorf("erro ao criar usuário: %w", err)
	}

	p.ID = u.ID
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.query(ctx, `INSERT INTO profiles (user_id, full_name, phone, house, room, approved, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.FullName, p.Phone, p.House, p.Room, p.Approved, p.CreatedAt, p.UpdatedAt).Exec(); err != nil {
		return fmt.Errorf("erro ao criar perfil: %w", err)
	}
	return nil
}

func (s *Scylla) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	email = strings.ToLower(email)
	var u models.User
	if err := s.query(ctx, `SELECT user_id FROM users_by_email WHERE email = ?`, email).Scan(&u.ID); err != nil {
		return models.User{}, wrapNotFound(err, "e-mail", email)
	}
	if err := s.query(ctx, `SELECT email, password, created_at FROM users WHERE user_id = ?`, u.ID).
		Scan(&u.Email, &u.Password, &u.CreatedAt); err != nil {
		return models.User{}, wrapNotFound(err, "usuário", u.ID)
	}
	return u, nil
}

const profileColumns = `user_id, full_name, phone, house, room, approved, created_at, updated_at`

func (s *Scylla) GetProfile(ctx context.Context, userID gocql.UUID) (models.Profile, error) {
	var p models.Profile
	err := s.query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.ID, &p.FullName, &p.Phone, &p.House, &p.Room, &p.Approved, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Profile{}, wrapNotFound(err, "perfil", userID)
	}
	return p, nil
}

func (s *Scylla) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	iter := s.query(ctx, `SELECT `+profileColumns+` FROM profiles`).Iter()
	var out []models.Profile
	var p models.Profile
	for iter.Scan(&p.ID, &p.FullName, &p.Phone, &p.House, &p.Room, &p.Approved, &p.CreatedAt, &p.UpdatedAt) {
		out = append(out, p)
		p = models.Profile{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erro ao ler perfis: %w", err)
	}
	sortProfiles(out)
	return out, nil
}

func (s *Scylla) SetApproved(ctx context.Context, userID gocql.UUID, approved bool) error {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}
	if err := s.query(ctx, `UPDATE profiles SET approved = ?, updated_at = ? WHERE user_id = ?`,
		approved, time.Now(), userID).Exec(); err != nil {
		return fmt.Errorf("erro ao atualizar aprovação: %w", err)
	}
	return nil
}

func (s *Scylla) Roles(ctx context.Context, userID gocql.UUID) ([]string, error) {
	iter := s.query(ctx, `SELECT role FROM user_roles WHERE user_id = ?`, userID).Iter()
	var roles []string
	var role string
	for iter.Scan(&role) {
		roles = append(roles, role)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erro ao ler papéis: %w", err)
	}
	return roles, nil
}

func (s *Scylla) GrantRole(ctx context.Context, userID gocql.UUID, role string) error {
	if err := s.query(ctx, `INSERT INTO user_roles (user_id, role) VALUES (?, ?)`, userID, role).Exec(); err != nil {
		return fmt.Errorf("erro ao conceder papel: %w", err)
	}
	return nil
}
