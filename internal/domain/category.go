package domain

type Category struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}
