package services

import "yatube/models"

// Owned - ресурс, у которого есть владелец (автор поста, комментария, профиль)
type Owned interface {
	OwnerID() int64
}

// IsOwner - единственная проверка прав для всех мутаций
func IsOwner(caller *models.User, resource Owned) bool {
	return caller != nil && caller.ID != 0 && resource != nil && caller.ID == resource.OwnerID()
}

func requireCaller(caller *models.User) error {
	if caller == nil || caller.ID == 0 {
		return ErrAuthenticationRequired
	}
	return nil
}
