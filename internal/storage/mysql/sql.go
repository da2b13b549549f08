package mysql

const upsertTourSQL = `
INSERT INTO tours
  (slug, name, images, title, description, price, position)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name        = VALUES(name),
  images      = VALUES(images),
  title       = VALUES(title),
  description = VALUES(description),
  price       = VALUES(price),
  position    = VALUES(position),
  updated_at  = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Display order is the catalog order captured at ingestion.
const listToursSQL = `
SELECT slug, name, images, title, description, price
FROM tours
ORDER BY position, slug
`

const deleteAllToursSQL = `DELETE FROM tours`

// pruneToursPrefix is completed with one placeholder per kept slug.
const pruneToursPrefix = `DELETE FROM tours WHERE slug NOT IN (`
