package main

// defaultLanguage is applied when the client sends no Accept-Language header.
const defaultLanguage = "pt"

// languageMap translates error codes into client-facing messages,
// keyed by language code, then by error code.
var languageMap = map[string]map[string]string{
	"pt": {
		"USER_NOT_FOUND":              "usuário não encontrado",
		"PRODUCT_NOT_FOUND":           "produto não encontrado",
		"RECIPE_NOT_FOUND":            "receita não encontrada",
		"IMAGE_NOT_FOUND":             "imagem não encontrada",
		"INGREDIENT_NOT_FOUND":        "ingrediente não encontrado",
		"RESET_TOKEN_NOT_FOUND":       "token de redefinição não encontrado",
		"FILE_NOT_FOUND":              "arquivo não encontrado",
		"LOGIN_ALREADY_EXISTS":        "login já cadastrado",
		"PRODUCT_NAME_ALREADY_EXISTS": "já existe um produto com este nome",
		"INGREDIENT_ALREADY_EXISTS":   "o produto já está associado a esta receita",
		"IMAGE_LIMIT_EXCEEDED":        "limite de imagens da receita atingido",
		"IMAGE_VALIDATION_FAILED":     "o arquivo enviado falhou na validação",
		"IMAGE_RECIPE_MISMATCH":       "a imagem não pertence à receita informada",
		"EMPTY_REORDER_PAYLOAD":       "a lista de reordenação está vazia",
		"NOT_RESOURCE_OWNER":          "apenas o dono ou um administrador pode alterar este recurso",
		"INVALID_CREDENTIALS":         "login ou senha inválidos",
		"INVALID_RESET_TOKEN":         "token de redefinição inválido ou expirado",
		"MISSING_AUTH_TOKEN":          "token de autenticação ausente ou malformado",
		"MISSING_UPLOAD_FILE":         "o campo de arquivo é obrigatório",
		"FILE_TOO_LARGE":              "o arquivo excede o tamanho máximo permitido",
		"FILE_EMPTY":                  "o arquivo está vazio",
		"VALIDATION_FAILED":           "dados da requisição inválidos",
		"INVALID_CONTENT_TYPE":        "cabeçalho Content-Type inválido",
		"INVALID_JSON_BODY":           "corpo JSON inválido",
		"INVALID_QUERY_PARAMS":        "parâmetros de consulta inválidos",
		"INVALID_PATH_PARAMS":         "parâmetros de caminho inválidos",
	},
	"en": {
		"USER_NOT_FOUND":              "user not found",
		"PRODUCT_NOT_FOUND":           "product not found",
		"RECIPE_NOT_FOUND":            "recipe not found",
		"IMAGE_NOT_FOUND":             "image not found",
		"INGREDIENT_NOT_FOUND":        "ingredient not found",
		"RESET_TOKEN_NOT_FOUND":       "reset token not found",
		"FILE_NOT_FOUND":              "file not found",
		"LOGIN_ALREADY_EXISTS":        "login already registered",
		"PRODUCT_NAME_ALREADY_EXISTS": "a product with this name already exists",
		"INGREDIENT_ALREADY_EXISTS":   "the product is already attached to this recipe",
		"IMAGE_LIMIT_EXCEEDED":        "recipe image limit reached",
		"IMAGE_VALIDATION_FAILED":     "the uploaded file failed validation",
		"IMAGE_RECIPE_MISMATCH":       "the image does not belong to the given recipe",
		"EMPTY_REORDER_PAYLOAD":       "the reorder list is empty",
		"NOT_RESOURCE_OWNER":          "only the owner or an admin may modify this resource",
		"INVALID_CREDENTIALS":         "invalid login or password",
		"INVALID_RESET_TOKEN":         "invalid or expired reset token",
		"MISSING_AUTH_TOKEN":          "missing or malformed authentication token",
		"MISSING_UPLOAD_FILE":         "the file field is required",
		"FILE_TOO_LARGE":              "the file exceeds the maximum allowed size",
		"FILE_EMPTY":                  "the file is empty",
		"VALIDATION_FAILED":           "invalid request data",
		"INVALID_CONTENT_TYPE":        "invalid Content-Type header",
		"INVALID_JSON_BODY":           "invalid JSON body",
		"INVALID_QUERY_PARAMS":        "invalid query parameters",
		"INVALID_PATH_PARAMS":         "invalid path parameters",
	},
}
