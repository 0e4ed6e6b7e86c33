// Package http expone las acciones de autenticación sobre chi:
//
//	{basePath}/{action}
//	{basePath}/{action}/{provider}
//
// Cada request pasa por options.Init; las cookies que devuelve se emiten antes de
// que la acción escriba su respuesta.
package http
