package mysql

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const findEnrollmentByUserSQL = `
SELECT id, user_id, name, cpf, birthday, phone, created_at, updated_at
FROM enrollments
WHERE user_id = ?
`

// One ticket per enrollment; the type is joined so the gate needs no second query.
const findTicketByEnrollmentSQL = `
SELECT
  t.id,
  t.enrollment_id,
  t.ticket_type_id,
  t.status,
  t.created_at,
  t.updated_at,
  tt.id,
  tt.name,
  tt.price,
  tt.is_remote,
  tt.includes_hotel,
  tt.created_at,
  tt.updated_at
FROM tickets t
JOIN ticket_types tt ON tt.id = t.ticket_type_id
WHERE t.enrollment_id = ?
`

const findAllHotelsSQL = `
SELECT id, name, image, created_at, updated_at
FROM hotels
ORDER BY id
`

const findHotelSQL = `
SELECT id, name, image, created_at, updated_at
FROM hotels
WHERE id = ?
`

const findRoomsByHotelSQL = `
SELECT id, name, capacity, hotel_id, created_at, updated_at
FROM rooms
WHERE hotel_id = ?
ORDER BY id
`

// -----------------------------------------------------------------------------
// SEED WRITES
// -----------------------------------------------------------------------------

// id = LAST_INSERT_ID(id) makes LastInsertId return the existing row on update.
const upsertHotelSQL = `
INSERT INTO hotels (name, image)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  id         = LAST_INSERT_ID(id),
  image      = VALUES(image),
  updated_at = CURRENT_TIMESTAMP
`

const upsertHotelWithIDSQL = `
INSERT INTO hotels (id, name, image)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  id         = LAST_INSERT_ID(id),
  name       = VALUES(name),
  image      = VALUES(image),
  updated_at = CURRENT_TIMESTAMP
`

const insertRoomsPrefix = "INSERT INTO rooms (hotel_id, name, capacity)\nVALUES "

const insertRoomsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  capacity   = VALUES(capacity),\n" +
	"  updated_at = CURRENT_TIMESTAMP\n"

const upsertUserSQL = `
INSERT INTO users (email)
VALUES (?)
ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
`

const upsertEnrollmentSQL = `
INSERT INTO enrollments (user_id, name, cpf, birthday, phone)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id         = LAST_INSERT_ID(id),
  name       = VALUES(name),
  cpf        = VALUES(cpf),
  birthday   = VALUES(birthday),
  phone      = VALUES(phone),
  updated_at = CURRENT_TIMESTAMP
`

const upsertTicketTypeSQL = `
INSERT INTO ticket_types (name, price, is_remote, includes_hotel)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id             = LAST_INSERT_ID(id),
  price          = VALUES(price),
  is_remote      = VALUES(is_remote),
  includes_hotel = VALUES(includes_hotel),
  updated_at     = CURRENT_TIMESTAMP
`

const upsertTicketSQL = `
INSERT INTO tickets (enrollment_id, ticket_type_id, status)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  id             = LAST_INSERT_ID(id),
  ticket_type_id = VALUES(ticket_type_id),
  status         = VALUES(status),
  updated_at     = CURRENT_TIMESTAMP
`
