package repo

import (
	"context"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    login VARCHAR(100) NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'USER',
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    password_changed_at TIMESTAMPTZ,
    password_changed_by VARCHAR(100),
    CONSTRAINT users_login_key UNIQUE (login)
);

CREATE TABLE IF NOT EXISTS products (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    unit_of_measure VARCHAR(50) NOT NULL,
    unit_cost NUMERIC(12, 4),
    category VARCHAR(100),
    supplier VARCHAR(255),
    description TEXT,
    barcode VARCHAR(100),
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_by VARCHAR(100) NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_by VARCHAR(100) NOT NULL,
    CONSTRAINT products_name_key UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS recipes (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    instructions TEXT NOT NULL,
    prep_time_minutes INT,
    yield VARCHAR(100),
    category VARCHAR(100),
    difficulty VARCHAR(50),
    notes TEXT,
    tags VARCHAR(50)[],
    favorite BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_by VARCHAR(100) NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_by VARCHAR(100) NOT NULL
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
    recipe_id BIGINT NOT NULL REFERENCES recipes (id) ON DELETE CASCADE,
    product_id BIGINT NOT NULL REFERENCES products (id),
    quantity NUMERIC(12, 4) NOT NULL,
    unit_of_measure VARCHAR(50) NOT NULL,
    CONSTRAINT recipe_ingredients_pkey PRIMARY KEY (recipe_id, product_id)
);

CREATE TABLE IF NOT EXISTS recipe_images (
    id BIGSERIAL PRIMARY KEY,
    recipe_id BIGINT NOT NULL REFERENCES recipes (id) ON DELETE CASCADE,
    stored_name VARCHAR(255) NOT NULL,
    original_name VARCHAR(255) NOT NULL,
    relative_path VARCHAR(500) NOT NULL,
    mime_type VARCHAR(100) NOT NULL,
    size_bytes BIGINT NOT NULL,
    width INT,
    height INT,
    principal BOOLEAN NOT NULL DEFAULT FALSE,
    description TEXT,
    display_order INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_by VARCHAR(100) NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_by VARCHAR(100) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recipe_images_recipe
ON recipe_images (recipe_id, display_order ASC, created_at ASC);

CREATE INDEX IF NOT EXISTS idx_recipe_images_principal
ON recipe_images (recipe_id)
WHERE principal;

CREATE TABLE IF NOT EXISTS password_reset_tokens (
    token VARCHAR(100) PRIMARY KEY,
    login VARCHAR(100) NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    used BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_expiry
ON password_reset_tokens (expires_at);
`

// Migrate creates the database schema when it does not exist yet.
func Migrate(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return errx.Wrap(err)
}
