package config

type Config struct {
	CatalogAddr string
}
