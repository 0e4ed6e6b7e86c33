// Package logger provee el logger Zap del servicio con scoping por contexto.
//
// # Design Decisions
//
//   - Singleton: una instancia global inicializada con Init() desde main.
//   - Context Scoping: cada request lleva su logger "scoped" (request_id, action,
//     provider) sin crear un nuevo core.
//   - Debug explícito: el flag debug de las opciones de auth se pasa a Debug(l, on)
//     en vez de mutar una variable de entorno del proceso.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//
// # Usage
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.Debug(logger.From(ctx), opts.Debug)
//	log.Debug("csrf resolved", logger.Action("session"))
package logger
