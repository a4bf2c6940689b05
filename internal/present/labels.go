package present

// User-facing strings. The storefront ships in Brazilian Portuguese.
const (
	CatalogLoading = "Carregando produtos..."
	CatalogError   = "Opssss.... erro ao buscar produtos"
	CartLoading    = "Buscando seu carrinho..."
	CartError      = "Erro ao carregar o carrinho."
	CartEmpty      = "Seu carrinho está vazio!"
	CartTotalLabel = "Total do Carrinho:"
	RetryLabel     = "Tentar Novamente"

	CheckoutLabel   = "Finalizar Compra"
	CheckoutMessage = "Pronto para finalizar a compra! (Simulação de checkout)"

	NoticeSuccess     = "Sucesso"
	NoticeError       = "Erro"
	QuantityUpdated   = "Quantidade atualizada!"
	QuantityFailed    = "Não foi possível atualizar a quantidade."
	RemoveTitle       = "Confirmar Remoção"
	RemovePrompt      = "Tem certeza que deseja remover este item?"
	RemoveConfirm     = "Remover"
	RemoveCancel      = "Cancelar"
	RemoveDone        = "Item removido do carrinho."
	RemoveFailed      = "Não foi possível remover o item."
	AddToCartLabel    = "Adicionar ao Carrinho"
	DescriptionLabel  = "Descrição:"
	SpecsTitle        = "Informações Adicionais"
	NoImages          = "Sem Imagens"
	OutOfStock        = "Fora de estoque"
	ShowLessReviews   = "Mostrar menos ▲"
	ShareTitle        = "Compartilhar Produto"
	LoginLabel        = "Login"
	LoginMissingField = "Por favor, preencha todos os campos."
)
