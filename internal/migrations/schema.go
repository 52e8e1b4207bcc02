package migrations

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		isbn BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		genre TEXT NOT NULL,
		deposit_cost NUMERIC(10, 2) NOT NULL CHECK (deposit_cost >= 0),
		rental_cost_per_day NUMERIC(10, 2) NOT NULL CHECK (rental_cost_per_day >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id BIGSERIAL PRIMARY KEY,
		address TEXT NOT NULL,
		full_name TEXT NOT NULL,
		phone_number TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS discounts (
		discount_name VARCHAR(255) PRIMARY KEY,
		discount_amount NUMERIC(10, 2) NOT NULL CHECK (discount_amount >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS penalties (
		penalty_name VARCHAR(255) PRIMARY KEY,
		penalty_amount NUMERIC(10, 2) NOT NULL CHECK (penalty_amount >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers (customer_id) ON DELETE CASCADE,
		isbn BIGINT NOT NULL REFERENCES books (isbn) ON DELETE CASCADE,
		issue_date DATE NOT NULL,
		return_date DATE NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orderdiscounts (
		link_id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders (order_id) ON DELETE CASCADE,
		discount_name VARCHAR(255) NOT NULL REFERENCES discounts (discount_name) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS orderdiscounts_order_id_idx ON orderdiscounts (order_id, link_id)`,
	`CREATE TABLE IF NOT EXISTS orderpenalties (
		link_id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders (order_id) ON DELETE CASCADE,
		penalty_name VARCHAR(255) NOT NULL REFERENCES penalties (penalty_name) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS orderpenalties_order_id_idx ON orderpenalties (order_id, link_id)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGSERIAL PRIMARY KEY,
		username VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(10) NOT NULL CHECK (role IN ('ADMIN', 'USER')),
		customer_id BIGINT NULL REFERENCES customers (customer_id) ON DELETE SET NULL
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		isbn BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		author VARCHAR(255) NOT NULL,
		genre VARCHAR(100) NOT NULL,
		deposit_cost DECIMAL(10, 2) NOT NULL,
		rental_cost_per_day DECIMAL(10, 2) NOT NULL
	) ENGINE = InnoDB`,
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		address VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		phone_number VARCHAR(50) NOT NULL
	) ENGINE = InnoDB`,
	`CREATE TABLE IF NOT EXISTS discounts (
		discount_name VARCHAR(255) PRIMARY KEY,
		discount_amount DECIMAL(10, 2) NOT NULL
	) ENGINE = InnoDB`,
	`CREATE TABLE IF NOT EXISTS penalties (
		penalty_name VARCHAR(255) PRIMARY KEY,
		penalty_amount DECIMAL(10, 2) NOT NULL
	) ENGINE = InnoDB`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		isbn BIGINT NOT NULL,
		issue_date DATE NOT NULL,
		return_date DATE NULL,
		FOREIGN KEY (customer_id) REFERENCES customers (customer_id) ON DELETE CASCADE,
		FOREIGN KEY (isbn) REFERENCES books (isbn) ON DELETE CASCADE
	) ENGINE = InnoDB`,
	`CREATE TABLE IF NOT EXISTS orderdiscounts (
		link_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		discount_name VARCHAR(255) NOT NULL,
		INDEX orderdiscounts_order_id_idx (order_id, link_id),
		FOREIGN KEY (order_id) REFERENCES orders (order_id) ON DELETE CASCADE,
		FOREIGN KEY (discount_name) REFERENCES discounts (discount_name) ON DELETE CASCADE
	) ENGINE = InnoDB`,
	`CREATE TABLE IF NOT EXISTS orderpenalties (
		link_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		penalty_name VARCHAR(255) NOT NULL,
		INDEX orderpenalties_order_id_idx (order_id, link_id),
		FOREIGN KEY (order_id) REFERENCES orders (order_id) ON DELETE CASCADE,
		FOREIGN KEY (penalty_name) REFERENCES penalties (penalty_name) ON DELETE CASCADE
	) ENGINE = InnoDB`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role ENUM('ADMIN', 'USER') NOT NULL,
		customer_id BIGINT NULL,
		FOREIGN KEY (customer_id) REFERENCES customers (customer_id) ON DELETE SET NULL
	) ENGINE = InnoDB`,
}
