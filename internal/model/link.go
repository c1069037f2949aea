package model

// Link 受保护短链的持久化记录，以 slug 为主键存入映射存储
type Link struct {
	Slug        string `json:"slug"`
	UpstreamURL string `json:"url"`
	SecretKey   string `json:"key"`
	Filename    string `json:"filename"`
}
